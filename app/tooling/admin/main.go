// This program performs administrative tasks for the gitcoin service.
package main

import "github.com/gitcoinhq/gitcoin/app/tooling/admin/cmd"

func main() {
	cmd.Execute()
}
