// Command search-mapper maps search hits to structured records.
//
//	search-mapper plan  -c mapping.yaml
//	search-mapper read  -c mapping.yaml --dir ./hits --format pig
//	search-mapper index -c mapping.yaml --doc '{"@timestamp":"2017-10-06"}'
package main

import (
	"os"
	"strings"

	"search-mapper/cmd/search-mapper/root"
)

func main() {
	if err := root.Execute(os.Args[1:]); err != nil {
		msg := strings.Join(strings.Fields(err.Error()), " ")
		if msg == "" {
			msg = "error"
		}

		_, _ = os.Stderr.WriteString(msg + "\n")
		os.Exit(1)
	}
}
