// Package speech extracts (name, relation) pairs from speech-to-text
// transcripts of self-introductions and manages the microphone listener that
// feeds them to the enrollment pipeline.
package speech

import (
	_ "embed"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed phrases.yaml
var phrasesYAML []byte

type phraseTable struct {
	Patterns  []string `yaml:"patterns"`
	Relations []string `yaml:"relations"`
}

var (
	phrasePatterns []*regexp.Regexp
	knownRelations map[string]struct{}
)

func init() {
	var table phraseTable
	if err := yaml.Unmarshal(phrasesYAML, &table); err != nil {
		// Embedded file, so this only fires on a bad edit.
		panic("failed to unmarshal embedded phrases.yaml: " + err.Error())
	}
	for _, p := range table.Patterns {
		phrasePatterns = append(phrasePatterns, regexp.MustCompile(p))
	}
	knownRelations = make(map[string]struct{}, len(table.Relations))
	for _, r := range table.Relations {
		knownRelations[r] = struct{}{}
	}
}

// Introduction is a recognized self-introduction.
type Introduction struct {
	Name     string
	Relation string
}

// ExtractIntroduction matches a transcript against the locale phrase patterns
// and returns the (name, relation) pair, or nil when nothing matches. Each
// pattern captures two words; the relations table decides which is which,
// since some phrasings put the relation first.
func ExtractIntroduction(transcript string) *Introduction {
	text := normalizeTranscript(transcript)

	for _, pattern := range phrasePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		var name, relation string
		if _, ok := knownRelations[m[1]]; ok {
			// "Saya [relation] Anda, nama saya [name]"
			relation, name = m[1], m[2]
		} else {
			// Default ordering: name first, relation second.
			name, relation = m[1], m[2]
		}

		return &Introduction{
			Name:     titleCase(name),
			Relation: titleCase(relation),
		}
	}
	return nil
}
