package main

import "storesync/cmd/admin/cmd"

func main() {
	cmd.Execute()
}
