package csvinput

import (
	"errors"
	"fmt"
	"strings"
)

// Erreurs communes de lecture
var (
	// ErrEmptyFile : le fichier ne contient aucun octet
	ErrEmptyFile = errors.New("fichier CSV vide")

	// ErrMissingHeader : pas de ligne d'en-tête
	ErrMissingHeader = errors.New("ligne d'en-tête CSV absente")

	// ErrHeaderNotParsed : ReadRow appelé avant ParseHeader
	ErrHeaderNotParsed = errors.New("en-tête CSV non lu")
)

// ParseError signale un champ obligatoire qui ne peut pas être converti.
// C'est l'erreur structurelle fatale : elle interrompt le traitement.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ligne %d, colonne '%s' : valeur %q invalide : %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingColumnsError liste les colonnes obligatoires absentes de l'en-tête.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("colonnes obligatoires absentes : %s", strings.Join(e.Columns, ", "))
}
