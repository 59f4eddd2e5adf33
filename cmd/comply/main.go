// comply/cmd/comply/main.go

package main

func main() {
	Execute()
}
