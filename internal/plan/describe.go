package plan

import (
	"context"
	"fmt"
	"strings"

	"object-mapper/internal/common"
	"object-mapper/internal/config"
	"object-mapper/internal/diagnostic"
	"object-mapper/internal/match"
	"object-mapper/node"
)

// Description is a readable rendering of a plan and the plans it uses.
type Description struct {
	Plans []PlanDescription `yaml:"plans" json:"plans"`
}

// PlanDescription describes one compiled plan.
type PlanDescription struct {
	Name         string                  `yaml:"name" json:"name"`
	RuleSet      string                  `yaml:"rule_set" json:"rule_set"`
	Source       string                  `yaml:"source" json:"source"`
	Target       string                  `yaml:"target" json:"target"`
	Member       string                  `yaml:"member,omitempty" json:"member,omitempty"`
	Root         string                  `yaml:"root,omitempty" json:"root,omitempty"`
	Shape        string                  `yaml:"shape" json:"shape"`
	Construction string                  `yaml:"construction,omitempty" json:"construction,omitempty"`
	Strategy     string                  `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	Elements     string                  `yaml:"elements,omitempty" json:"elements,omitempty"`
	Callbacks    []string                `yaml:"callbacks,omitempty" json:"callbacks,omitempty"`
	Members      []MemberDescription     `yaml:"members,omitempty" json:"members,omitempty"`
	Diagnostics  []diagnostic.Diagnostic `yaml:"diagnostics,omitempty" json:"diagnostics,omitempty"`
	Error        string                  `yaml:"error,omitempty" json:"error,omitempty"`
}

// MemberDescription describes how one target member is populated.
type MemberDescription struct {
	Target    string   `yaml:"target" json:"target"`
	Operation string   `yaml:"op" json:"op"`
	Source    string   `yaml:"source,omitempty" json:"source,omitempty"`
	Plan      string   `yaml:"plan,omitempty" json:"plan,omitempty"`
	Note      string   `yaml:"note,omitempty" json:"note,omitempty"`
	Callbacks []string `yaml:"callbacks,omitempty" json:"callbacks,omitempty"`
}

// Describe compiles the plan of key and every plan reachable from it, and describes them
// in the order they are first used. Plans for interface members are described with
// their declared types.
func (e *Engine) Describe(ctx context.Context, key Key) (*Description, error) {
	var (
		dealer node.Dealer[Key]
		names  = make(map[Key]string)
		stem   = node.NewStem("plan", nil)
		desc   = &Description{}
	)

	name := func(k Key) string {
		if n, ok := names[k]; ok {
			return n
		}

		names[k] = stem.Next()

		return names[k]
	}

	dealer.Needs(key)

	for k, ok := dealer.NextNeeds(); ok; k, ok = dealer.NextNeeds() {
		p, err := e.Plan(ctx, k)
		if err != nil {
			if k == key {
				return nil, err
			}

			desc.Plans = append(desc.Plans, PlanDescription{
				Name:    name(k),
				RuleSet: k.RuleSet.String(),
				Source:  common.TypeName(k.Source()),
				Target:  common.TypeName(k.Target()),
				Member:  k.MemberPath,
				Root:    rootName(k),
				Error:   err.Error(),
			})

			continue
		}

		desc.Plans = append(desc.Plans, describePlan(p, name))

		for _, child := range p.Children() {
			if child.Source() != nil && child.Target() != nil {
				dealer.Needs(child)
			}
		}
	}

	return desc, nil
}

func describePlan(p *Plan, name func(Key) string) PlanDescription {
	pd := PlanDescription{
		Name:        name(p.Key),
		RuleSet:     p.Key.RuleSet.String(),
		Source:      common.TypeName(p.Key.Source()),
		Target:      common.TypeName(p.Key.Target()),
		Member:      p.Key.MemberPath,
		Root:        rootName(p.Key),
		Shape:       p.Shape.String(),
		Diagnostics: p.Diagnostics.All(),
	}

	if ep := p.Enumerable; ep != nil {
		pd.Strategy = ep.Strategy.String() + ": " + explainStrategy(ep, p.Key.RuleSet)
		if ep.ElementKey != nil {
			pd.Elements = name(*ep.ElementKey)
		}
	}

	var pending []string // member callbacks waiting for their member

	for _, op := range p.Ops {
		switch op.Kind {
		case OpAcquire:
			pd.Construction = op.Construction.String()
			if p.Key.RuleSet.ReusesTarget() {
				pd.Construction = "existing or " + pd.Construction
			}

		case OpCallback:
			for _, cb := range op.Callbacks {
				line := cb.Position.String() + " " + cb.Target.String() + ": " + cb.Action.String()
				if op.Target == nil {
					pd.Callbacks = append(pd.Callbacks, line)
				} else if cb.Position == config.Before {
					pending = append(pending, line)
				} else if n := len(pd.Members); n > 0 {
					pd.Members[n-1].Callbacks = append(pd.Members[n-1].Callbacks, line)
				}
			}

		case OpPopulateMember, OpPopulateComplex, OpReconcileEnumerable, OpSkipMember:
			md := describeMember(op, name)
			md.Callbacks, pending = pending, nil
			pd.Members = append(pd.Members, md)
		}
	}

	return pd
}

func rootName(k Key) string {
	if !k.IsMemberScoped() {
		return ""
	}

	return common.TypeName(k.RootTarget)
}

func describeMember(op Operation, name func(Key) string) MemberDescription {
	md := MemberDescription{Target: op.Target.Path(), Operation: op.Kind.String()}

	if op.Kind == OpSkipMember {
		md.Note = op.Reason

		return md
	}

	md.Source = describeSources(op.Sources)

	switch op.Kind {
	case OpPopulateMember:
		if src := op.Sources.Type(); src != nil {
			compat := match.ScoreTypeCompatibility(src, op.Target.Type())
			if compat.Compatibility < match.TypeAssignable {
				md.Note = compat.Compatibility.String()
			}
		}

	case OpPopulateComplex, OpReconcileEnumerable:
		if op.Child.Source() != nil && op.Child.Target() != nil {
			md.Plan = name(op.Child)
		}

		if op.Child.IsMemberScoped() {
			md.Note = "populated from the same source"
			if md.Source == "" {
				md.Source = "source"
			}
		}
	}

	return md
}

func describeSources(set *DataSourceSet) string {
	var parts []string

	for _, ds := range set.Sources {
		part := ds.String()
		if ds.Conditional() {
			part += " if " + ds.Configured.Condition.String()
		}

		if ds.Configured != nil && ds.Configured.Default.IsValid() {
			part += fmt.Sprintf(" ?? %#v", ds.Configured.Default.Interface())
		}

		parts = append(parts, part)
	}

	return strings.Join(parts, " else ")
}

// Text renders the description as indented text. Unpopulated members appear as comments:
// "// No data source for X" and "// X is ignored".
func (d *Description) Text() string {
	var b strings.Builder

	for i, pd := range d.Plans {
		if i > 0 {
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "%s: %s -> %s (%s)", pd.Name, pd.Source, pd.Target, pd.RuleSet)

		if pd.Member != "" {
			fmt.Fprintf(&b, " at %s", pd.Member)
		}

		b.WriteString("\n")

		if pd.Error != "" {
			fmt.Fprintf(&b, "    // %s\n", pd.Error)

			continue
		}

		if pd.Construction != "" {
			fmt.Fprintf(&b, "    construct: %s\n", pd.Construction)
		}

		for _, cb := range pd.Callbacks {
			fmt.Fprintf(&b, "    %s\n", cb)
		}

		if pd.Strategy != "" {
			fmt.Fprintf(&b, "    strategy: %s\n", pd.Strategy)
		}

		if pd.Elements != "" {
			fmt.Fprintf(&b, "    elements: %s\n", pd.Elements)
		}

		for _, md := range pd.Members {
			writeMember(&b, md)
		}
	}

	return b.String()
}

func writeMember(b *strings.Builder, md MemberDescription) {
	for _, cb := range md.Callbacks {
		fmt.Fprintf(b, "    // %s %s\n", md.Target, cb)
	}

	switch {
	case md.Operation == OpSkipMember.String() && md.Note == "ignored":
		fmt.Fprintf(b, "    // %s is ignored\n", md.Target)

		return

	case md.Operation == OpSkipMember.String():
		fmt.Fprintf(b, "    // No data source for %s\n", md.Target)

		return

	case md.Plan != "":
		fmt.Fprintf(b, "    %s = %s(%s)", md.Target, md.Plan, md.Source)

	default:
		fmt.Fprintf(b, "    %s = %s", md.Target, md.Source)
	}

	if md.Note != "" {
		fmt.Fprintf(b, " // %s", md.Note)
	}

	b.WriteString("\n")
}

// Unmapped returns the paths of target members without data source in the plans of d.
func (d *Description) Unmapped() []string {
	var paths []string

	for _, pd := range d.Plans {
		for _, md := range pd.Members {
			if md.Operation == OpSkipMember.String() && md.Note != "ignored" {
				paths = append(paths, pd.Target+"."+md.Target)
			}
		}
	}

	return paths
}
