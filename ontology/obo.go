package ontology

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const maxOBOLine = 1 << 20

// ParseOBO reads an OBO 1.2 document and builds its is_a graph. Only [Term]
// stanzas contribute; Typedef and Instance stanzas are skipped.
func ParseOBO(r io.Reader) (*Graph, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), maxOBOLine)

	terms := make(map[string]*Term)
	var version string
	var cur *Term
	inTerm := false
	lineNo := 0

	flush := func() error {
		if cur == nil {
			return nil
		}
		if cur.ID == "" {
			return fmt.Errorf("term stanza ending at line %d has no id", lineNo)
		}
		terms[cur.ID] = cur
		cur = nil
		return nil
	}

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if err := flush(); err != nil {
				return nil, err
			}
			inTerm = line == "[Term]"
			if inTerm {
				cur = &Term{}
			}
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		if cur == nil {
			if !inTerm && key == "data-version" {
				version = value
			}
			continue
		}
		switch key {
		case "id":
			cur.ID = value
		case "name":
			cur.Name = value
		case "is_a":
			if parent := firstField(value); parent != "" {
				cur.Parents = append(cur.Parents, parent)
			}
		case "is_obsolete":
			cur.Obsolete = value == "true"
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obo: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, errors.New("obo document defines no terms")
	}
	return newGraph(version, terms), nil
}

// firstField strips trailing qualifiers ({...}) and comments (! ...).
func firstField(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
