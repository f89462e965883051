package models

/*
LOAD → enregistrements lus depuis les deux fichiers CSV d'entrée.
*/

// ProductRecord associe un produit du catalogue à son rayon (department).
type ProductRecord struct {
	ProductID    int64
	DepartmentID int64
}

// OrderLineRecord représente une ligne de commande. Reordered == false signifie
// que le client demande ce produit pour la première fois.
type OrderLineRecord struct {
	ProductID int64
	Reordered bool
}

/*
COMPUTE → compteurs par rayon, créés au premier usage puis modifiés sur place.
*/

// DepartmentStats contient les compteurs d'un rayon.
// Invariant : NumberOfFirstOrders <= NumberOfOrders.
type DepartmentStats struct {
	NumberOfOrders      int64
	NumberOfFirstOrders int64
}

// Record compte une demande de produit ; firstOrder indique une première commande.
func (s *DepartmentStats) Record(firstOrder bool) {
	s.NumberOfOrders++
	if firstOrder {
		s.NumberOfFirstOrders++
	}
}

/*
OUTPUT → ligne du rapport, calculée uniquement à l'écriture.
*/

// ReportRow est une ligne du rapport final.
type ReportRow struct {
	DepartmentID        int64
	NumberOfOrders      int64
	NumberOfFirstOrders int64
	Percentage          string // ratio first/orders, 2 décimales ("0.50")
}

/*
CONFIG → paramètres globaux
*/

// Config contient les paramètres passés à la fonction de calcul.
type Config struct {
	OrderProductsPath string `validate:"required"` // order_products.csv
	ProductsPath      string `validate:"required"` // products.csv
	ReportPath        string `validate:"required"` // report.csv
	StoreDSN          string // optionnel : mysql://, mariadb://, sqlite://
	StoreTable        string `validate:"required_with=StoreDSN"`
	Progress          bool   // barre de progression sur le flux de commandes
}
