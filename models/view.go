package models

import "time"

// PageView is one recorded visit to a page. Rows are append-mostly: the only
// mutation ever applied is the duration back-fill when the visitor leaves.
type PageView struct {
	ID         string    `json:"id"`
	PagePath   string    `json:"pagePath"`
	PageTitle  string    `json:"pageTitle,omitempty"`
	SessionID  string    `json:"sessionId"`
	UserID     string    `json:"userId,omitempty"`
	Referrer   string    `json:"referrer,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	DeviceType string    `json:"deviceType,omitempty"`
	Browser    string    `json:"browser,omitempty"`
	OS         string    `json:"os,omitempty"`
	Country    string    `json:"country,omitempty"`
	City       string    `json:"city,omitempty"`
	Region     string    `json:"region,omitempty"`
	Duration   int64     `json:"duration,omitempty"` // seconds
	IsBounce   bool      `json:"isBounce,omitempty"`
	ExitType   string    `json:"exitType,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// CarView is one recorded visit to a car detail screen. Never mutated.
type CarView struct {
	ID         string    `json:"id"`
	CarID      string    `json:"carId"`
	SessionID  string    `json:"sessionId"`
	UserID     string    `json:"userId,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	DeviceType string    `json:"deviceType,omitempty"`
	Browser    string    `json:"browser,omitempty"`
	OS         string    `json:"os,omitempty"`
	Country    string    `json:"country,omitempty"`
	City       string    `json:"city,omitempty"`
	Region     string    `json:"region,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// PageViewRequest is the body of POST /api/track/page-view.
type PageViewRequest struct {
	PagePath  string `json:"pagePath"`
	PageTitle string `json:"pageTitle"`
	SessionID string `json:"sessionId"`
	StartTime string `json:"startTime"` // RFC3339, optional
}

// PageDurationRequest is the body of POST /api/track/page-duration. Duration is
// a pointer so a missing field can be told apart from an explicit zero.
type PageDurationRequest struct {
	PagePath   string   `json:"pagePath"`
	PageTitle  string   `json:"pageTitle"`
	SessionID  string   `json:"sessionId"`
	Duration   *float64 `json:"duration"` // seconds
	ExitType   string   `json:"exitType"`
	PageViewID string   `json:"pageViewId"`
}

// CarViewRequest is the body of POST /api/track/car-view.
type CarViewRequest struct {
	CarID     string `json:"carId"`
	SessionID string `json:"sessionId"`
}

// DayCount is one bucket of a dense daily time series.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count uint64 `json:"count"`
}

// ViewStats summarizes a trailing window for one page, one car, or everything.
type ViewStats struct {
	TotalViews     uint64     `json:"totalViews"`
	UniqueSessions uint64     `json:"uniqueSessions"`
	Daily          []DayCount `json:"daily"`
}

type TopPage struct {
	PagePath string `json:"pagePath"`
	Views    uint64 `json:"views"`
}

type TopCar struct {
	CarID   string `json:"carId"`
	CarName string `json:"carName,omitempty"`
	Views   uint64 `json:"views"`
}

// BucketCount is a generic label/count pair for device and location breakdowns.
type BucketCount struct {
	Label string `json:"label"`
	Count uint64 `json:"count"`
}
