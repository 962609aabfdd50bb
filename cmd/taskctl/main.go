// Command taskctl runs administrative tasks against the TaskHub database.
package main

func main() {
	Execute()
}
