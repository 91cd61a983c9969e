package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ItemCategory distinguishes the kinds of gradable knowledge items.
type ItemCategory string

// Possible item categories.
const (
	CategoryWord     ItemCategory = "word"
	CategoryPhrase   ItemCategory = "phrase"
	CategorySentence ItemCategory = "sentence"
	CategoryGrammar  ItemCategory = "grammar"
)

// Difficulty marks how an item may be practiced. Only write items are
// eligible for dictation worksheets.
type Difficulty string

// Possible difficulty tags.
const (
	DifficultyWrite     Difficulty = "write"
	DifficultyRecognize Difficulty = "recognize"
)

// Item-specific validation errors.
var (
	// ErrItemIDEmpty is returned when an item ID is empty or nil.
	ErrItemIDEmpty = errors.New("item ID cannot be empty")

	// ErrItemCollectionIDEmpty is returned when an item's collection ID is empty or nil.
	ErrItemCollectionIDEmpty = errors.New("item collection ID cannot be empty")

	// ErrItemPromptEmpty is returned when an item's prompt text is empty.
	ErrItemPromptEmpty = errors.New("item prompt cannot be empty")

	// ErrItemAnswerEmpty is returned when an item's answer text is empty.
	ErrItemAnswerEmpty = errors.New("item answer cannot be empty")

	// ErrItemCategoryInvalid is returned when an item's category is not recognized.
	ErrItemCategoryInvalid = errors.New("invalid item category")

	// ErrItemDifficultyInvalid is returned when an item's difficulty tag is not recognized.
	ErrItemDifficultyInvalid = errors.New("invalid item difficulty")
)

// KnowledgeItem is one gradable vocabulary/phrase/sentence/grammar unit.
// Items are immutable after import except via explicit update and are
// uniquely keyed by (collection, unit, category, prompt).
type KnowledgeItem struct {
	ID               uuid.UUID    `json:"id"`
	CollectionID     uuid.UUID    `json:"collection_id"`
	Unit             string       `json:"unit"`
	Category         ItemCategory `json:"category"`
	Prompt           string       `json:"prompt"`
	Answer           string       `json:"answer"`
	AnswerNormalized string       `json:"answer_normalized"`
	Difficulty       Difficulty   `json:"difficulty"`
	Enabled          bool         `json:"enabled"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// NewKnowledgeItem creates a KnowledgeItem with a fresh UUID and a
// pre-computed normalized answer. Returns an error if validation fails.
func NewKnowledgeItem(
	collectionID uuid.UUID,
	unit string,
	category ItemCategory,
	prompt, answer string,
	difficulty Difficulty,
) (*KnowledgeItem, error) {
	now := time.Now().UTC()
	item := &KnowledgeItem{
		ID:               uuid.New(),
		CollectionID:     collectionID,
		Unit:             unit,
		Category:         category,
		Prompt:           prompt,
		Answer:           answer,
		AnswerNormalized: NormalizeAnswer(answer),
		Difficulty:       difficulty,
		Enabled:          true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate checks if the KnowledgeItem has valid data.
func (i *KnowledgeItem) Validate() error {
	if i.ID == uuid.Nil {
		return ErrItemIDEmpty
	}
	if i.CollectionID == uuid.Nil {
		return ErrItemCollectionIDEmpty
	}
	if i.Prompt == "" {
		return ErrItemPromptEmpty
	}
	if i.Answer == "" {
		return ErrItemAnswerEmpty
	}
	switch i.Category {
	case CategoryWord, CategoryPhrase, CategorySentence, CategoryGrammar:
	default:
		return ErrItemCategoryInvalid
	}
	switch i.Difficulty {
	case DifficultyWrite, DifficultyRecognize:
	default:
		return ErrItemDifficultyInvalid
	}
	return nil
}

// UpdateAnswer replaces the item's answer text, recomputing the normalized
// form and bumping the update timestamp.
func (i *KnowledgeItem) UpdateAnswer(answer string) error {
	if answer == "" {
		return ErrItemAnswerEmpty
	}
	i.Answer = answer
	i.AnswerNormalized = NormalizeAnswer(answer)
	i.UpdatedAt = time.Now().UTC()
	return nil
}
