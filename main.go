package main

import "github.com/HaiFongPan/reconsole/cmd"

func main() {
	cmd.Execute()
}
