package gemini

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// intValue is an int that also accepts JSON string and float encodings,
// because the model is inconsistent about numeric types. Zero means absent.
type intValue int

func (v *intValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			*v = 0
			return nil
		}
		*v = intValue(n)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = intValue(int(f))
	return nil
}

// responseEntry is one per-position verdict in the canonical model
// response shape. All fields are optional; normalization fills the gaps.
type responseEntry struct {
	Position    intValue `json:"position"`
	Mark        string   `json:"mark"`
	Confidence  float64  `json:"confidence"`
	StudentText string   `json:"student_text"`
	Note        string   `json:"note"`

	// Alternate spellings seen in the wild.
	Index   intValue `json:"index"`
	No      intValue `json:"no"`
	Result  string   `json:"result"`
	Correct *bool    `json:"correct"`
	Answer  string   `json:"answer"`
	Text    string   `json:"text"`
	Comment string   `json:"comment"`
}

// responseSchema is the canonical top-level response shape. The model is
// asked for {"items": [...]} but frequently substitutes its own key; the
// alternates are tried in declaration order.
type responseSchema struct {
	Items     []responseEntry `json:"items"`
	Questions []responseEntry `json:"questions"`
	Results   []responseEntry `json:"results"`
	Answers   []responseEntry `json:"answers"`
	Data      []responseEntry `json:"data"`

	// Some responses nest the list one level down.
	Result *struct {
		Items []responseEntry `json:"items"`
	} `json:"result"`

	// Some responses group entries into per-category sections.
	Sections []responseSection `json:"sections"`

	// Some responses split entries into category-keyed parallel arrays.
	Words     []responseEntry `json:"words"`
	Phrases   []responseEntry `json:"phrases"`
	Sentences []responseEntry `json:"sentences"`
}

// responseSection is a category-grouped block of entries, sometimes using
// single-letter keys (p=position, m=mark, c=confidence, t=text, n=note).
type responseSection struct {
	Category string          `json:"category"`
	Items    []responseEntry `json:"items"`
	Entries  []shortEntry    `json:"entries"`
}

// shortEntry is the compact single-letter-key entry form.
type shortEntry struct {
	P intValue `json:"p"`
	M string   `json:"m"`
	C float64  `json:"c"`
	T string   `json:"t"`
	N string   `json:"n"`
}

// entries returns whichever entry list the response carried, or nil when
// every known key is empty.
func (r *responseSchema) entries() []responseEntry {
	for _, list := range [][]responseEntry{r.Items, r.Questions, r.Results, r.Answers, r.Data} {
		if len(list) > 0 {
			return list
		}
	}
	if r.Result != nil && len(r.Result.Items) > 0 {
		return r.Result.Items
	}
	return nil
}
