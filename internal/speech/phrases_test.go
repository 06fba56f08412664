package speech

import "testing"

func TestExtractIntroduction(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		wantName   string
		wantRel    string
	}{
		{
			name:       "nama saya form",
			transcript: "Nama saya Budi, anak Anda",
			wantName:   "Budi",
			wantRel:    "Anak",
		},
		{
			name:       "short saya form",
			transcript: "Saya Siti, istri Anda",
			wantName:   "Siti",
			wantRel:    "Istri",
		},
		{
			name:       "relation first",
			transcript: "Saya cucu Anda, nama saya Dewi",
			wantName:   "Dewi",
			wantRel:    "Cucu",
		},
		{
			name:       "perkenalkan form",
			transcript: "Perkenalkan, nama saya Rina, teman Anda",
			wantName:   "Rina",
			wantRel:    "Teman",
		},
		{
			name:       "repeated saya",
			transcript: "Saya Agus, saya tetangga Anda",
			wantName:   "Agus",
			wantRel:    "Tetangga",
		},
		{
			name:       "diacritics stripped",
			transcript: "Nama saya Andréa, anak Anda",
			wantName:   "Andrea",
			wantRel:    "Anak",
		},
		{
			name:       "english my name is",
			transcript: "My name is John, I'm your son",
			wantName:   "John",
			wantRel:    "Son",
		},
		{
			name:       "english i am",
			transcript: "I am Mary, your daughter",
			wantName:   "Mary",
			wantRel:    "Daughter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intro := ExtractIntroduction(tt.transcript)
			if intro == nil {
				t.Fatalf("expected a match for %q", tt.transcript)
			}
			if intro.Name != tt.wantName || intro.Relation != tt.wantRel {
				t.Errorf("got (%s, %s), want (%s, %s)", intro.Name, intro.Relation, tt.wantName, tt.wantRel)
			}
		})
	}
}

func TestExtractIntroduction_NoMatch(t *testing.T) {
	for _, transcript := range []string{
		"",
		"halo apa kabar",
		"cuacanya bagus hari ini",
		"the weather is nice",
	} {
		if intro := ExtractIntroduction(transcript); intro != nil {
			t.Errorf("expected no match for %q, got %+v", transcript, intro)
		}
	}
}

func TestRemoveDiacritics(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Andréa", "Andrea"},
		{"NurSão", "NurSao"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RemoveDiacritics(tt.in); got != tt.want {
			t.Errorf("RemoveDiacritics(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
