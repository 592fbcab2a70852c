// Command mapplan prints mapping plans and maps JSON or YAML documents between the
// store and warehouse demo models.
//
//	mapplan plan --source store.Order --target warehouse.Order --rule-set merge
//	mapplan map --source store.Order --target warehouse.Order order.json
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

var (
	version   = "dev"
	commit    = ""
	date      = ""
	builtBy   = ""
	treeState = ""
)

func main() {
	if err := fang.Execute(context.Background(), rootCmd()); err != nil {
		os.Exit(1)
	}
}
