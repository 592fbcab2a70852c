package node

// Dealer hands out work items exactly once, in the order they were first needed.
type Dealer[T comparable] struct {
	queue []T
	seen  map[T]struct{}
}

// NextNeeds pops the oldest pending item.
func (d *Dealer[T]) NextNeeds() (item T, ok bool) {
	if len(d.queue) == 0 {
		return
	}

	item = d.queue[0]
	d.queue = d.queue[1:]

	return item, true
}

// Needs queues item unless it was queued or done before.
func (d *Dealer[T]) Needs(item T) {
	if d.seen == nil {
		d.seen = make(map[T]struct{})
	}

	if _, exists := d.seen[item]; exists {
		return
	}

	d.seen[item] = struct{}{}
	d.queue = append(d.queue, item)
}

// Done marks item as handled without queueing it.
func (d *Dealer[T]) Done(item T) {
	if d.seen == nil {
		d.seen = make(map[T]struct{})
	}

	d.seen[item] = struct{}{}
}

// Pending returns the number of queued items.
func (d *Dealer[T]) Pending() int {
	return len(d.queue)
}
