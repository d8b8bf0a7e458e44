// Package model mirrors the backend's record shapes. The backend owns
// every entity; everything here is a cache of what it last returned.
package model

import "time"

// Closed value sets defined by the backend. Event types and inventory
// categories are deliberately absent: those catalogs are dynamic and come
// from their own endpoints.
const (
	SeverityBassa   = "bassa"
	SeverityMedia   = "media"
	SeverityAlta    = "alta"
	SeverityCritica = "critica"

	StatusAperto  = "aperto"
	StatusInCorso = "in_corso"
	StatusRisolto = "risolto"
	StatusChiuso  = "chiuso"

	PriorityBassa   = "bassa"
	PriorityNormale = "normale"
	PriorityAlta    = "alta"
)

func KnownSeverities() []string { return []string{SeverityBassa, SeverityMedia, SeverityAlta, SeverityCritica} }
func KnownStatuses() []string   { return []string{StatusAperto, StatusInCorso, StatusRisolto, StatusChiuso} }
func KnownPriorities() []string { return []string{PriorityBassa, PriorityNormale, PriorityAlta} }

type Event struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	EventType       string     `json:"event_type"`
	Severity        string     `json:"severity"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	Address         *string    `json:"address"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	CreatedBy       string     `json:"created_by"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	ResourcesNeeded []string   `json:"resources_needed"`
	Notes           *string    `json:"notes"`
}

func (e Event) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}

type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Operator  string    `json:"operator"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	EventID   *string   `json:"event_id"`
	Priority  string    `json:"priority"`
}

type InventoryItem struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Category      string     `json:"category"`
	Quantity      int        `json:"quantity"`
	Unit          string     `json:"unit"`
	Location      string     `json:"location"`
	MinQuantity   int        `json:"min_quantity"`
	MaxQuantity   *int       `json:"max_quantity"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	Supplier      *string    `json:"supplier"`
	CostPerUnit   *float64   `json:"cost_per_unit"`
	Notes         *string    `json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	LastUpdatedBy *string    `json:"last_updated_by,omitempty"`
}

// LowStock reports the alert condition the inventory view highlights.
func (i InventoryItem) LowStock() bool {
	return i.Quantity <= i.MinQuantity
}

// ExpiringBy reports whether the item expires on or before the deadline.
func (i InventoryItem) ExpiringBy(deadline time.Time) bool {
	return i.ExpiryDate != nil && !i.ExpiryDate.After(deadline)
}

type InventoryAlerts struct {
	LowStockItems []InventoryItem `json:"low_stock_items"`
	ExpiringItems []InventoryItem `json:"expiring_items"`
	TotalAlerts   int             `json:"total_alerts"`
}

type User struct {
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	Active    bool       `json:"active"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type EventType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}

type InventoryCategory struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Icon        *string   `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}

type DashboardStats struct {
	TotalEvents      int `json:"total_events"`
	OpenEvents       int `json:"open_events"`
	CriticalEvents   int `json:"critical_events"`
	InventoryItems   int `json:"inventory_items"`
	TrainedResources int `json:"trained_resources"`
	TotalLogs        int `json:"total_logs"`
	InventoryAlerts  struct {
		LowStock     int `json:"low_stock"`
		ExpiringSoon int `json:"expiring_soon"`
		Total        int `json:"total"`
	} `json:"inventory_alerts"`
}

type MapEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventType   string    `json:"event_type"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
	Notes       string    `json:"notes"`
}

type MapEvents struct {
	Events []MapEvent `json:"events"`
	Total  int        `json:"total"`
}

type PermissionCatalog struct {
	AllPermissions     []string            `json:"all_permissions"`
	CurrentPermissions map[string][]string `json:"current_permissions"`
	Roles              map[string]string   `json:"roles"`
}

type ReportTemplate struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Filters     []string `json:"filters"`
	Formats     []string `json:"formats"`
}

type ReportCatalog struct {
	Templates     map[string]ReportTemplate `json:"templates"`
	FilterOptions struct {
		EventTypes []string `json:"event_types"`
		Severities []string `json:"severities"`
		Priorities []string `json:"priorities"`
		Statuses   []string `json:"statuses"`
		Operators  []string `json:"operators"`
	} `json:"filter_options"`
}

type DatabaseConfig struct {
	MongoURL               string `json:"mongo_url"`
	DatabaseName           string `json:"database_name"`
	ConnectionTimeout      int    `json:"connection_timeout"`
	ServerSelectionTimeout int    `json:"server_selection_timeout"`
}

type DatabaseStatus struct {
	Connected    bool   `json:"connected"`
	DatabaseName string `json:"database_name"`
	Message      string `json:"message"`
}

type AdminStats struct {
	Users struct {
		Total    int            `json:"total"`
		Active   int            `json:"active"`
		Inactive int            `json:"inactive"`
		ByRole   map[string]int `json:"by_role"`
	} `json:"users"`
	System struct {
		TotalEvents    int `json:"total_events"`
		TotalLogs      int `json:"total_logs"`
		TotalInventory int `json:"total_inventory"`
	} `json:"system"`
	RecentActivity struct {
		EventsLast7Days int `json:"events_last_7_days"`
		LogsLast7Days   int `json:"logs_last_7_days"`
	} `json:"recent_activity"`
}
