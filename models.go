package walks

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the principal model. Every protected operation in the system is
// authorized against its Role and IsActive fields as stored, not as they
// were when a session token was minted.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Username      string     `bun:"username,notnull" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string     `bun:"phone" json:"phone,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	ImgURL        string     `bun:"img" json:"img,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	IsActive      bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	PublicRef     uuid.UUID  `bun:"public_ref,nullzero,type:uuid" json:"public_ref,omitempty"`
	Walks         []*Walk    `bun:"rel:has-many,join:id=user_id" json:"walks,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Walk is a listing posted by a user. The owning user is fixed at creation;
// the ownership guard compares UserID against the requesting actor.
type Walk struct {
	bun.BaseModel `bun:"table:walks,alias:wlk"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	DateTime      *time.Time `bun:"date_time,nullzero" json:"date_time,omitempty"`
	Location      string     `bun:"location,notnull" json:"location,omitempty"`
	Duration      int        `bun:"duration" json:"duration,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	ImgURL        string     `bun:"img" json:"img,omitempty"`
	IsActive      bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	UserID        int64      `bun:"user_id,notnull" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ActivityRecord persists audit events emitted through an ActivitySink.
type ActivityRecord struct {
	bun.BaseModel `bun:"table:activity_log,alias:act"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	EventType     string         `bun:"event_type,notnull" json:"event_type,omitempty"`
	ActorID       string         `bun:"actor_id" json:"actor_id,omitempty"`
	ActorType     string         `bun:"actor_type" json:"actor_type,omitempty"`
	UserID        string         `bun:"user_id" json:"user_id,omitempty"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	OccurredAt    time.Time      `bun:"occurred_at,notnull" json:"occurred_at,omitempty"`
}
