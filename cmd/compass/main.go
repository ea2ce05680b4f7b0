// Command compass reads a learning workspace, reports its state, and
// completes checklist tasks in bulk.
package main

import "github.com/mesh-intelligence/compass/internal/cli"

func main() {
	cli.Execute()
}
