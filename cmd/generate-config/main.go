package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/notes-editor/internal/config"
)

var sectionComments = map[string]string{
	"logging": "Log level: trace, debug, info, warn or error",
	"server":  "Address the API listens on",
	"storage": "Where authoritative notes live: memory, http or s3.\n" +
		"NOTES_API_TOKEN, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY and S3_ENDPOINT override the matching fields",
	"drafts": "Where in-progress edits are kept: memory, sqlite or redis.\n" +
		"sqlite.compression is zstd, gzip or none. REDIS_URL overrides redis.url",
	"editor": "Heading levels above max_heading_level (at most 3) are clamped.\n" +
		"Typing within group_delay_ms of the previous keystroke is undone as one step",
	"render": "Chroma style used for code blocks in previews",
}

func generate() ([]byte, error) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return nil, err
	}

	// Mapping nodes alternate key and value.
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		if comment, ok := sectionComments[key.Value]; ok {
			key.HeadComment = comment
		}
	}
	doc.HeadComment = "notes-editor configuration example\nCopy this file to config.yaml and customize as needed"

	return yaml.Marshal(&doc)
}

func main() {
	output, err := generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}

	outputFile := "config.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		fmt.Print(string(output))
		return
	}
	if err := os.WriteFile(outputFile, output, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
