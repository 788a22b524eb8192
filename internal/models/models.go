package models

import "time"

// SystemSenderID marks chat messages generated by the server
const SystemSenderID = "system"

// ListingStatus is the lifecycle state of a listing
type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingPaused    ListingStatus = "paused"
	ListingCompleted ListingStatus = "completed"
)

// Valid reports whether s is a known listing status
func (s ListingStatus) Valid() bool {
	switch s {
	case ListingActive, ListingPaused, ListingCompleted:
		return true
	}
	return false
}

// SwipeDirection is left (pass) or right (interested)
type SwipeDirection string

const (
	SwipeLeft  SwipeDirection = "left"
	SwipeRight SwipeDirection = "right"
)

// Valid reports whether d is a known swipe direction
func (d SwipeDirection) Valid() bool {
	return d == SwipeLeft || d == SwipeRight
}

// MatchStatus is the lifecycle state of a match
type MatchStatus string

const (
	MatchActive   MatchStatus = "active"
	MatchArchived MatchStatus = "archived"
)

// MessageKind distinguishes participant messages from server notices
type MessageKind string

const (
	MessageText   MessageKind = "text"
	MessageSystem MessageKind = "system"
)

// Valid reports whether k is a known message kind
func (k MessageKind) Valid() bool {
	return k == MessageText || k == MessageSystem
}

// TaskStatus is the progress state of a task
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known task status
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// User represents a person who publishes listings and swipes on others
type User struct {
	ID          string    `json:"id"`
	ExternalID  string    `json:"external_id,omitempty"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio"`
	AvatarRef   string    `json:"avatar_ref,omitempty"`
	PushToken   *string   `json:"-"`
	ListingIDs  []string  `json:"listing_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// Listing represents a published project looking for collaborators
type Listing struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Vision      string        `json:"vision"`
	WorkStyle   string        `json:"work_style"`
	Skills      []string      `json:"skills"`
	Status      ListingStatus `json:"status"`
	ImageURL    string        `json:"image_url,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Swipe is a single interest signal from a user toward a listing
type Swipe struct {
	ID        string         `json:"id"`
	SwiperID  string         `json:"swiper_id"`
	ListingID string         `json:"listing_id"`
	Direction SwipeDirection `json:"direction"`
	CreatedAt time.Time      `json:"created_at"`
}

// Match pairs two listings whose owners swiped right on each other
type Match struct {
	ID         string      `json:"id"`
	ListingAID string      `json:"listing_a_id"`
	ListingBID string      `json:"listing_b_id"`
	Status     MatchStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Involves reports whether listingID is one side of the match
func (m *Match) Involves(listingID string) bool {
	return m.ListingAID == listingID || m.ListingBID == listingID
}

// ChatMessage is one entry of a match's chat thread
type ChatMessage struct {
	ID        string      `json:"id"`
	MatchID   string      `json:"match_id"`
	SenderID  string      `json:"sender_id"`
	Content   string      `json:"content"`
	Kind      MessageKind `json:"kind"`
	Timestamp time.Time   `json:"timestamp"`
}

// Task is an item on a match's shared task board
type Task struct {
	ID          string     `json:"id"`
	MatchID     string     `json:"match_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
