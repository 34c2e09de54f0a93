package main

import "github.com/AlexandrKovin/RideShare/pkg/tool"

func main() {
	tool.Execute()
}
