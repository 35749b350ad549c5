// Package models defines data structures used across the application.
// File: models/vote.go
package models

import "time"

// ----------------------- ballot options -----------------------

// Option identifiers. These are the only values a stored vote may count for.
const (
	OptionChapa1   = "Chapa 1"
	OptionChapa2   = "Chapa 2"
	OptionChapa3   = "Chapa 3"
	OptionVotoNulo = "Voto Nulo"
)

// VoteOption is one entry of the static ballot.
type VoteOption struct {
	ID          string
	Title       string
	Description string
	Icon        string // icon name used by the vote template
	Image       string
	ImageHint   string
}

// voteOptions is the ballot, in display order. Tally ties keep this order.
var voteOptions = []VoteOption{
	{ID: OptionChapa1, Title: "Inovação & Futuro", Description: "Um novo amanhã para nossa escola.", Icon: "users", Image: "https://placehold.co/600x400.png", ImageHint: "team innovation"},
	{ID: OptionChapa2, Title: "Tradição & Força", Description: "Valorizando o que temos de melhor.", Icon: "users", Image: "https://placehold.co/600x400.png", ImageHint: "students tradition"},
	{ID: OptionChapa3, Title: "Voz Ativa", Description: "Participação e representatividade para todos.", Icon: "users", Image: "https://placehold.co/600x400.png", ImageHint: "students voice"},
	{ID: OptionVotoNulo, Title: "Voto Nulo", Description: "Nenhuma das opções.", Icon: "ban", Image: "https://placehold.co/600x400.png", ImageHint: "blank slate"},
}

// VoteOptions returns a copy of the ballot in display order.
func VoteOptions() []VoteOption {
	out := make([]VoteOption, len(voteOptions))
	copy(out, voteOptions)
	return out
}

// LookupOption returns the option with the given identifier.
func LookupOption(id string) (VoteOption, bool) {
	for _, o := range voteOptions {
		if o.ID == id {
			return o, true
		}
	}
	return VoteOption{}, false
}

// IsValidOption reports whether id is one of the four ballot identifiers.
func IsValidOption(id string) bool {
	_, ok := LookupOption(id)
	return ok
}

// ------------------------ voter identity -----------------------

// Voter is the identity derived from an institutional email at login.
type Voter struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ------------------------ vote record -----------------------

// VoteRecord is one cast ballot as held by the vote store.
type VoteRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Vote      string    `json:"vote"`
	Timestamp time.Time `json:"timestamp"`
}

// ------------------------ tally -----------------------

// TallyEntry is the count for one option.
type TallyEntry struct {
	Name  string `json:"name"`
	Votes int    `json:"votes"`
}

// Tally is the aggregated result of a list of vote records.
// Sum of Entries votes plus Invalid always equals Total.
type Tally struct {
	Entries []TallyEntry `json:"entries"`
	Total   int          `json:"totalVotes"`
	Invalid int          `json:"invalid"`
}
