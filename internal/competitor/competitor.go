package competitor

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrInvalid is returned for competitors missing a name or a player pick.
var ErrInvalid = errors.New("invalid competitor")

// Competitor is a pool entrant with exactly three chosen players
type Competitor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=80"`
	Players   [3]string `json:"golfers" validate:"dive,required"`
	CreatedAt time.Time `json:"created_at"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report JSON names in errors
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// New creates a Competitor with a fresh ID
func New(name string, players [3]string) (*Competitor, error) {
	c := &Competitor{
		ID:        uuid.NewString(),
		Name:      name,
		Players:   players,
		CreatedAt: time.Now().UTC(),
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Normalize trims surrounding whitespace from the name and picks
func (c *Competitor) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	for i, p := range c.Players {
		c.Players[i] = strings.TrimSpace(p)
	}
}

// Validate checks the name and all three picks are present
func (c *Competitor) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		if strings.HasPrefix(fe.Field(), "golfers") {
			return fmt.Errorf("%w: three players are required", ErrInvalid)
		}
		return fmt.Errorf("%w: %s is required", ErrInvalid, fe.Field())
	case "max":
		return fmt.Errorf("%w: %s is longer than %s characters", ErrInvalid, fe.Field(), fe.Param())
	}
	return fmt.Errorf("%w: %s failed %s", ErrInvalid, fe.Field(), fe.Tag())
}

// ScoreboardEntry is a competitor's derived standing. It is recomputed on
// every request and never stored.
type ScoreboardEntry struct {
	CompetitorID string            `json:"id"`
	Competitor   string            `json:"competitor"`
	Players      [3]string         `json:"golfers"`
	Scores       map[string]string `json:"scores"`
	Total        string            `json:"total"`
	TotalNumeric int               `json:"total_numeric"`
}
