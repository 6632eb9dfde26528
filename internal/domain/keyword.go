package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Keyword-specific validation errors
var (
	// ErrKeywordIDEmpty is returned when a keyword ID is empty or nil.
	ErrKeywordIDEmpty = errors.New("keyword ID cannot be empty")

	// ErrKeywordTopicEmpty is returned when a keyword's topic is empty.
	ErrKeywordTopicEmpty = errors.New("keyword topic cannot be empty")

	// ErrKeywordWordEmpty is returned when a keyword's word is empty.
	ErrKeywordWordEmpty = errors.New("keyword word cannot be empty")

	// ErrKeywordImageURLEmpty is returned when a keyword's image URL is empty.
	ErrKeywordImageURLEmpty = errors.New("keyword image URL cannot be empty")
)

// Keyword is one learnable vocabulary entry of the content catalog.
// Review sessions pair a keyword's word with its image and audio, and draw
// distractor images from other keywords of the same topic.
type Keyword struct {
	ID        uuid.UUID `json:"id"`
	Topic     string    `json:"topic"`
	Word      string    `json:"word"`
	ImageURL  string    `json:"image_url"`
	AudioURL  string    `json:"audio_url"`
	CreatedAt time.Time `json:"created_at"`
}

// NewKeyword creates a new Keyword with the given content fields.
// It generates a new UUID for the keyword ID and sets the creation timestamp.
// Returns an error if validation fails.
func NewKeyword(topic, word, imageURL, audioURL string) (*Keyword, error) {
	keyword := &Keyword{
		ID:        uuid.New(),
		Topic:     topic,
		Word:      word,
		ImageURL:  imageURL,
		AudioURL:  audioURL,
		CreatedAt: time.Now().UTC(),
	}

	if err := keyword.Validate(); err != nil {
		return nil, err
	}

	return keyword, nil
}

// Validate checks if the Keyword has valid data.
// Returns an error if any field fails validation.
func (k *Keyword) Validate() error {
	if k.ID == uuid.Nil {
		return ErrKeywordIDEmpty
	}

	if k.Topic == "" {
		return ErrKeywordTopicEmpty
	}

	if k.Word == "" {
		return ErrKeywordWordEmpty
	}

	if k.ImageURL == "" {
		return ErrKeywordImageURLEmpty
	}

	return nil
}
