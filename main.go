// Command umsftpd is a demo CLI around the vfs package: it loads a
// mount-definition file and exposes ls/stat/cat against the resulting
// virtual filesystem, plus a Prometheus metrics endpoint.
package main

import "github.com/oldphoenix/umsftpd/cmd"

func main() {
	cmd.Execute()
}
