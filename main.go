package main

import "github.com/quocvuong92/qcli/cmd"

func main() {
	cmd.Execute()
}
