package language

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed stopwords/*.txt
var stopwordFiles embed.FS

// Stopwords returns the embedded stop-word list for code, or an empty set
// when none ships with the binary. Each call returns a fresh map.
func Stopwords(code string) map[string]struct{} {
	set := make(map[string]struct{})
	data, err := stopwordFiles.ReadFile("stopwords/" + code + ".txt")
	if err != nil {
		return set
	}
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, w := range strings.Fields(line) {
			set[w] = struct{}{}
		}
	}
	return set
}

// StopwordSet builds a stop-word set from an explicit word list.
func StopwordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
