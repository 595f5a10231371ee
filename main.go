package main

import "github.com/huanfeng/updategen/cmd"

func main() {
	cmd.Execute()
}
