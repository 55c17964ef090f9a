package models

// DefaultReviewCount is applied when a request leaves Count unset.
const DefaultReviewCount = 50

// MaxReviewCount caps how many reviews a single task may request.
const MaxReviewCount = 1000

// URLScrapeRequest is the payload for POST /api/v1/scrape/url.
type URLScrapeRequest struct {
	// URL is a Google Maps place or search-results link. Required.
	URL string `json:"url" binding:"required,url"`

	// Count is the desired number of reviews. Default: 50.
	Count int `json:"count,omitempty" binding:"omitempty,min=1,max=1000"`
}

// Defaults applies default values to unset fields.
func (r *URLScrapeRequest) Defaults() {
	if r.Count == 0 {
		r.Count = DefaultReviewCount
	}
}

// SearchScrapeRequest is the payload for POST /api/v1/scrape/search.
type SearchScrapeRequest struct {
	// Query is free text identifying the place, e.g. "Cafe Example Tokyo".
	Query string `json:"query" binding:"required"`

	// Count is the desired number of reviews. Default: 50.
	Count int `json:"count,omitempty" binding:"omitempty,min=1,max=1000"`
}

// Defaults applies default values to unset fields.
func (r *SearchScrapeRequest) Defaults() {
	if r.Count == 0 {
		r.Count = DefaultReviewCount
	}
}

// TaskResponse is the immediate response for task-creating endpoints.
type TaskResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// TaskStatusResponse is the response for GET /api/v1/tasks/:id.
type TaskStatusResponse struct {
	TaskID    string       `json:"task_id"`
	Status    string       `json:"status"`
	Progress  int          `json:"progress"`
	Message   string       `json:"message"`
	Reviews   []Review     `json:"data,omitempty"`
	PlaceInfo *PlaceInfo   `json:"place_info,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
}
