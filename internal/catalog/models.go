package catalog

import "time"

// Card is one catalog document. It is stored schema-less (jsonb), the
// struct covers the fields the API computes or reads back; PATCH may add
// fields beyond these and they are preserved in the store.
type Card struct {
	ID               string           `json:"id"`
	Titre            string           `json:"titre"`
	SousTitre        string           `json:"sous_titre,omitempty"`
	Description      string           `json:"description,omitempty"`
	Image            string           `json:"image,omitempty"`
	Images           []string         `json:"images,omitempty"`
	Caracteristiques []string         `json:"caracteristiques,omitempty"`
	ProduitsDerives  []DerivedProduct `json:"produits_derives,omitempty"`
	Prix             float64          `json:"prix"`
	Stock            int              `json:"stock"`
	StockReduc       int              `json:"stock_reduc"`
	Disponible       int              `json:"pourcentage_disponible"`
	Nouveau          bool             `json:"nouveau"`
	Stars            float64          `json:"stars"`
	Reviews          []Review         `json:"reviews"`
	CreatedAt        time.Time        `json:"created_at"`
}

type DerivedProduct struct {
	Titre string  `json:"titre"`
	Prix  float64 `json:"prix"`
	Image string  `json:"image,omitempty"`
}

type Review struct {
	UserID  string    `json:"userId"`
	Rating  float64   `json:"rating"`
	Comment string    `json:"comment,omitempty"`
	Date    time.Time `json:"date"`
}
