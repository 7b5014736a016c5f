package movieapi

import "strings"

type Movie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Trailer     string   `json:"trailer"`
	Gallery     []string `json:"gallery"`
	AvgRating   float64  `json:"avg_rating"`
	NoOfRatings int      `json:"no_of_ratings"`
	IsLatest    bool     `json:"is_latest"`
}

// HasTrailer reports whether the movie can appear in the hero rotation.
func (m Movie) HasTrailer() bool {
	return strings.TrimSpace(m.Trailer) != ""
}

// Credential is the opaque backend token. It never leaves the server except
// sealed inside the session cookie.
type Credential string

func (c Credential) IsZero() bool { return strings.TrimSpace(string(c)) == "" }

func (c Credential) header() string { return "Token " + string(c) }

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

type RateResponse struct {
	Message string `json:"message"`
}

// Attachment is an uploaded poster or trailer file.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MovieInput is the multipart body of create and update.
type MovieInput struct {
	Title       string
	Description string
	Category    string
	IsLatest    bool
	Image       *Attachment
	Trailer     *Attachment
}
