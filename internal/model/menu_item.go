package model

// Station identifies the fulfillment track that prepares an item.
type Station string

const (
	StationKitchen Station = "cocina"
	StationBar     Station = "barra"
)

func (s Station) Valid() bool {
	return s == StationKitchen || s == StationBar
}

type Category struct {
	BaseModel
	ParentID  *string    `db:"parent_id" json:"parent_id"` // Nullable; set for subcategories
	Name      string     `db:"name" json:"name"`
	Station   Station    `db:"station" json:"station"`
	SortOrder int        `db:"sort_order" json:"sort_order"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	Children  []Category `db:"-" json:"children,omitempty"`
}

// MenuItem is the canonical menu entry. Price and stock are server-owned and
// never taken from a client request.
type MenuItem struct {
	BaseModel
	CategoryID    *string `db:"category_id" json:"category_id"`
	SubcategoryID *string `db:"subcategory_id" json:"subcategory_id"`
	Name          string  `db:"name" json:"name"`
	Description   *string `db:"description" json:"description"`
	Price         float64 `db:"price" json:"price"`
	Available     bool    `db:"available" json:"available"`
	Stock         int     `db:"stock" json:"stock"`
	MinStock      int     `db:"min_stock" json:"min_stock"`
	Station       Station `db:"station" json:"station"`
	ImageURL      *string `db:"image_url" json:"image_url"`

	Category *Category `db:"-" json:"category,omitempty"` // Joined data
}

// Sellable reports whether the item can be added to a new order line.
func (m *MenuItem) Sellable() bool {
	return m.Available && m.Stock > 0
}

type Extra struct {
	BaseModel
	Name     string  `db:"name" json:"name"`
	Price    float64 `db:"price" json:"price"`
	Type     string  `db:"type" json:"type"`
	IsActive bool    `db:"is_active" json:"is_active"`
}
