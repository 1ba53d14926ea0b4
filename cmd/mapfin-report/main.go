// Command mapfin-report prints the mapfin dashboard views in the terminal.
package main

import "os"

func main() {
	os.Exit(execute())
}
