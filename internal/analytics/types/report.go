package types

import "time"

// Report is the operations analytics output. Every numeric field is finite and every
// value that cannot be computed is an explicit null.
type Report struct {
	Window           Window        `json:"window"`
	SalesOverview    SalesOverview `json:"salesOverview"`
	Trend            Trend         `json:"trend"`
	ChannelBreakdown []ChannelRow  `json:"channelBreakdown"`
	Assortment       []ListingRow  `json:"assortment"`
	Compliance       Compliance    `json:"compliance"`
	Settlements      Settlements   `json:"settlements"`
	SLA              SLA           `json:"sla"`
	Diagnostics      Diagnostics   `json:"diagnostics"`
}

// Window echoes the parameters the report was built with.
type Window struct {
	From           *time.Time `json:"from"`
	To             *time.Time `json:"to"`
	AsOf           time.Time  `json:"asOf"`
	TrendDays      int        `json:"trendDays"`
	SLATargetHours int        `json:"slaTargetHours"`
	StaleAfterDays int        `json:"staleAfterDays"`
}

type SalesOverview struct {
	TotalOrders      int            `json:"totalOrders"`
	AttachedOrders   int            `json:"attachedOrders"`
	UnattachedOrders int            `json:"unattachedOrders"`
	AveragePrice     *float64       `json:"averagePrice"`
	GMV              float64        `json:"gmv"`
	StatusCounts     map[string]int `json:"statusCounts"`
}

type TrendPoint struct {
	Date   string  `json:"date"`
	GMV    float64 `json:"gmv"`
	Orders int     `json:"orders"`
}

type Trend struct {
	Points        []TrendPoint `json:"points"`
	FirstHalfGMV  float64      `json:"firstHalfGmv"`
	SecondHalfGMV float64      `json:"secondHalfGmv"`
	Change        float64      `json:"change"`
}

type ChannelRow struct {
	Channel      string         `json:"channel"`
	Orders       int            `json:"orders"`
	GMV          float64        `json:"gmv"`
	GMVShare     float64        `json:"gmvShare"`
	StatusCounts map[string]int `json:"statusCounts"`
	LastSyncAt   *time.Time     `json:"lastSyncAt"`
	Listings     int            `json:"listings"`
	Issues       []string       `json:"issues"`
	Health       string         `json:"health"`
}

// PriceBand is the price ledger of a listing. Unknown prices are null.
type PriceBand struct {
	Latest   *float64 `json:"latest"`
	Previous *float64 `json:"previous"`
	Floor    *float64 `json:"floor"`
	Ceiling  *float64 `json:"ceiling"`
}

type ListingRow struct {
	Key             string     `json:"key"`
	Label           string     `json:"label"`
	Channel         string     `json:"channel"`
	Status          string     `json:"status"`
	Orders          int        `json:"orders"`
	PendingOrders   int        `json:"pendingOrders"`
	CancelledOrders int        `json:"cancelledOrders"`
	FailedPrints    int        `json:"failedPrints"`
	GMVShare        float64    `json:"gmvShare"`
	LastOrderAt     *time.Time `json:"lastOrderAt"`
	Price           PriceBand  `json:"price"`
	RepricingActive bool       `json:"repricingActive"`
	PricingRule     string     `json:"pricingRule"`
	Score           int        `json:"score"`
	Flagged         bool       `json:"flagged"`
	Issues          []string   `json:"issues"`
}

type Compliance struct {
	Summary  ComplianceSummary `json:"summary"`
	Listings []ComplianceRow   `json:"listings"`
	Tasks    []ComplianceTask  `json:"tasks"`
}

type ComplianceSummary struct {
	Listings     int      `json:"listings"`
	Healthy      int      `json:"healthy"`
	Monitor      int      `json:"monitor"`
	Action       int      `json:"action"`
	AverageScore *float64 `json:"averageScore"`
}

type ComplianceRow struct {
	Key             string     `json:"key"`
	Label           string     `json:"label"`
	Status          string     `json:"status"`
	Level           string     `json:"level"`
	Score           int        `json:"score"`
	Orders          int        `json:"orders"`
	Cancellations   int        `json:"cancellations"`
	FailedPrints    int        `json:"failedPrints"`
	MissingPayments int        `json:"missingPayments"`
	Delivered       int        `json:"delivered"`
	LastActivityAt  *time.Time `json:"lastActivityAt"`
}

type ComplianceTask struct {
	ListingKey string `json:"listingKey"`
	Label      string `json:"label"`
	Metric     string `json:"metric"`
	Count      int    `json:"count"`
	Priority   string `json:"priority"`
	Title      string `json:"title"`
}

type Settlements struct {
	Summary    SettlementSummary `json:"summary"`
	Cycles     []SettlementCycle `json:"cycles"`
	NextPayout *NextPayout       `json:"nextPayout"`
}

type SettlementSummary struct {
	Cycles                 int      `json:"cycles"`
	Complete               int      `json:"complete"`
	InProgress             int      `json:"inProgress"`
	AttentionNeeded        int      `json:"attentionNeeded"`
	TotalAmount            float64  `json:"totalAmount"`
	PendingAmount          float64  `json:"pendingAmount"`
	AverageDaysToReconcile *float64 `json:"averageDaysToReconcile"`
}

type SettlementCycle struct {
	Week                   string         `json:"week"`
	Status                 string         `json:"status"`
	FirstDate              *time.Time     `json:"firstDate"`
	LastDate               *time.Time     `json:"lastDate"`
	Amount                 float64        `json:"amount"`
	PendingAmount          float64        `json:"pendingAmount"`
	Records                int            `json:"records"`
	Orders                 int            `json:"orders"`
	StatusCounts           map[string]int `json:"statusCounts"`
	AverageDaysToReconcile *float64       `json:"averageDaysToReconcile"`
}

type NextPayout struct {
	Week         string  `json:"week"`
	ExpectedDate string  `json:"expectedDate"`
	Amount       float64 `json:"amount"`
}

type SLA struct {
	Summary SLASummary `json:"summary"`
	Weeks   []SLAWeek  `json:"weeks"`
}

type SLASummary struct {
	TargetHours int      `json:"targetHours"`
	Shipments   int      `json:"shipments"`
	Measured    int      `json:"measured"`
	OnTime      int      `json:"onTime"`
	Breaches    int      `json:"breaches"`
	OnTimeRate  *float64 `json:"onTimeRate"`
}

type SLAWeek struct {
	Week       string      `json:"week"`
	Shipments  int         `json:"shipments"`
	Measured   int         `json:"measured"`
	OnTime     int         `json:"onTime"`
	OnTimeRate *float64    `json:"onTimeRate"`
	Breaches   []SLABreach `json:"breaches"`
}

type SLABreach struct {
	ShipmentID    string  `json:"shipmentId"`
	OrderID       string  `json:"orderId"`
	LeadTimeHours float64 `json:"leadTimeHours"`
}

// Diagnostics reports what the normalizer had to substitute.
type Diagnostics struct {
	Records                map[string]int `json:"records"`
	Anomalies              map[string]int `json:"anomalies"`
	DuplicateShipments     int            `json:"duplicateShipments"`
	UndatedShipments       int            `json:"undatedShipments"`
	UndatedReconciliations int            `json:"undatedReconciliations"`
}
