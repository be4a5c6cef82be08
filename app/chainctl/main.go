// chainctl is a small command line client for driving the engine service
// over its public HTTP API.
package main

import "github.com/powlab/powchain/app/chainctl/cmd"

func main() {
	cmd.Execute()
}
