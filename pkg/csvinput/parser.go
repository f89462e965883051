package csvinput

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RowReader est implémenté par *Parser.
type RowReader interface {
	ReadRow() (*Row, error)
}

// Parser lit un CSV avec en-tête, ligne par ligne (pas de matérialisation).
type Parser struct {
	delimiter  rune
	trimSpace  bool
	headers    []string
	headerMap  map[string]int
	currentRow int
	totalRows  int
	reader     *csv.Reader
}

// ParserOption configure un Parser.
type ParserOption func(*Parser)

// WithDelimiter change le séparateur (virgule par défaut).
func WithDelimiter(d rune) ParserOption {
	return func(p *Parser) {
		p.delimiter = d
	}
}

// WithTrimSpace active ou non la suppression des espaces autour des champs.
func WithTrimSpace(trim bool) ParserOption {
	return func(p *Parser) {
		p.trimSpace = trim
	}
}

// NewParser crée un parser ; le BOM UTF-8 éventuel est ignoré.
func NewParser(r io.Reader, opts ...ParserOption) (*Parser, error) {
	p := &Parser{
		delimiter: ',',
		trimSpace: true,
		headerMap: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	br := bufio.NewReader(r)
	head, err := br.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("lecture fichier : %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}
	// BOM UTF-8 : 0xEF, 0xBB, 0xBF
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	p.reader = csv.NewReader(br)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = p.trimSpace
	p.reader.FieldsPerRecord = -1
	p.reader.ReuseRecord = true
	return p, nil
}

// ParseHeader lit l'en-tête et vérifie la présence des colonnes obligatoires.
// Les colonnes supplémentaires sont ignorées.
func (p *Parser) ParseHeader(required ...string) error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("lecture en-tête : %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		if p.trimSpace {
			h = strings.TrimSpace(h)
		}
		p.headers[i] = h
		// première occurrence d'un nom de colonne dupliqué
		if _, ok := p.headerMap[h]; !ok {
			p.headerMap[h] = i
		}
	}
	p.currentRow = 1

	var missing []string
	for _, col := range required {
		if _, ok := p.headerMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

// Headers retourne les noms de colonnes lus.
func (p *Parser) Headers() []string {
	return p.headers
}

// HasHeader indique si la colonne existe.
func (p *Parser) HasHeader(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// ReadRow lit la ligne suivante ; io.EOF en fin de fichier.
// La Row retournée n'est valide que jusqu'au prochain appel.
func (p *Parser) ReadRow() (*Row, error) {
	if p.headers == nil {
		return nil, ErrHeaderNotParsed
	}
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, fmt.Errorf("lecture ligne %d : %w", p.currentRow, err)
	}
	p.totalRows++
	return &Row{
		LineNumber: p.currentRow,
		fields:     record,
		headerMap:  p.headerMap,
		trimSpace:  p.trimSpace,
	}, nil
}

// CurrentRow retourne le numéro de la dernière ligne lue (en-tête = 1).
func (p *Parser) CurrentRow() int {
	return p.currentRow
}

// TotalRows retourne le nombre de lignes de données lues.
func (p *Parser) TotalRows() int {
	return p.totalRows
}

// Row est une ligne de données avec son numéro de ligne.
type Row struct {
	LineNumber int
	fields     []string
	headerMap  map[string]int
	trimSpace  bool
}

// Get retourne la valeur d'une colonne ("" si absente ou ligne trop courte).
func (r *Row) Get(column string) string {
	i, ok := r.headerMap[column]
	if !ok || i >= len(r.fields) {
		return ""
	}
	if r.trimSpace {
		return strings.TrimSpace(r.fields[i])
	}
	return r.fields[i]
}

// Int convertit une colonne en entier ; *ParseError sinon.
func (r *Row) Int(column string) (int64, error) {
	raw := r.Get(column)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &ParseError{Line: r.LineNumber, Column: column, Value: raw, Err: err}
	}
	return v, nil
}

// Bool01 lit un indicateur entier : 0 → false, toute autre valeur → true.
func (r *Row) Bool01(column string) (bool, error) {
	v, err := r.Int(column)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}
