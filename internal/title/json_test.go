package title_test

import (
	"encoding/json"
	"testing"

	"titledb/internal/title"
	"titledb/internal/titleid"
)

func TestMarshalUpdateRecordByteExact(t *testing.T) {
	rec := title.New(titleid.MustParse("0005000E10100D00"))
	rec.EshopID = "20010000000026"
	rec.Name = "TestTitle® Wii U"
	rec.Region = title.JPN
	rec.Size = 391053332
	rec.SetVersion(42)

	got, err := rec.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON returned error: %v", err)
	}
	want := `{"EshopId":"20010000000026","IconUrl":"","Name":"TestTitle\u00ae Wii U","Platform":0,` +
		`"ProductCode":null,"Region":"JPN","Size":"391053332","TitleId":"0005000E10100D00",` +
		`"PreLoad":false,"Version":"42","DiscOnly":false}`
	if string(got) != want {
		t.Fatalf("unexpected JSON:\n got %s\nwant %s", got, want)
	}
}

func TestMarshalGameSentinels(t *testing.T) {
	rec := title.New(titleid.MustParse("00050000101C9500"))
	rec.Platform = 124
	rec.SetVersion(7)

	got, err := rec.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON returned error: %v", err)
	}
	want := `{"EshopId":null,"IconUrl":"#N/A","Name":null,"Platform":124,"ProductCode":"-",` +
		`"Region":"N/A","Size":"0","TitleId":"00050000101C9500","PreLoad":false,"Version":"","DiscOnly":true}`
	if string(got) != want {
		t.Fatalf("unexpected JSON:\n got %s\nwant %s", got, want)
	}
}

func TestMarshalOutputIsValidJSON(t *testing.T) {
	rec := title.New(titleid.MustParse("0004000000030700"))
	rec.Name = "Line\nBreak \"quoted\" back\\slash 東京 🎮"
	rec.IconURL = "https://example.test/i/icon.jpg"
	rec.ProductCode = "AXCE"

	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, raw)
	}
	if decoded["Name"] != rec.Name {
		t.Fatalf("name did not survive escaping: %q", decoded["Name"])
	}
	if decoded["IconUrl"] != rec.IconURL {
		t.Fatalf("icon url did not survive escaping: %q", decoded["IconUrl"])
	}
}

func TestEscape(t *testing.T) {
	cases := map[string]string{
		"plain":          "plain",
		"a/b":            `a\/b`,
		"tab\there":      `tab\there`,
		"bell\a":         `bell\u0007`,
		"caf\u00e9":      `caf\u00e9`,
		"\U0001F3AE":     `\ud83c\udfae`,
		"del\x7f":        `del\u007f`,
		`say "hi"`:       `say \"hi\"`,
		"carriage\rfeed": `carriage\u000dfeed`,
	}
	for input, want := range cases {
		if got := title.Escape(input); got != want {
			t.Fatalf("Escape(%q): got %q want %q", input, got, want)
		}
	}
}
