package main

import "github.com/dbsmedya/gisadmin/cmd/gisadmin/cmd"

func main() {
	cmd.Execute()
}
