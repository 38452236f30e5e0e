package main

import "repairdesk/cmd"

func main() {
	cmd.Execute()
}
