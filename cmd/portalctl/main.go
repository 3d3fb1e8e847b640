// Command portalctl bulk-loads directory records and bootstraps admins
// directly against the portal database.
package main

import "os"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
