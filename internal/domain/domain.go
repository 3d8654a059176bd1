package domain

import (
	"github.com/havenapp/haven-backend/internal/domain/alerts"
	"github.com/havenapp/haven-backend/internal/domain/auth"
	"github.com/havenapp/haven-backend/internal/domain/chat"
	"github.com/havenapp/haven-backend/internal/domain/jobs"
	"github.com/havenapp/haven-backend/internal/domain/library"
	"github.com/havenapp/haven-backend/internal/domain/user"
)

// Identity + auth
type User = user.User
type UserSummary = user.Summary
type UserToken = auth.UserToken

// Messaging
type ChatInvitation = chat.ChatInvitation
type Conversation = chat.Conversation
type ConversationDeletedBy = chat.ConversationDeletedBy
type Message = chat.Message

// Location alerts
type Contact = alerts.Contact
type LocationAlert = alerts.LocationAlert
type LocationSnapshot = alerts.LocationSnapshot

// Job postings + resource library
type JobPost = jobs.JobPost
type LibraryModule = library.LibraryModule

const (
	InvitationPending  = chat.InvitationPending
	InvitationAccepted = chat.InvitationAccepted
	InvitationDeclined = chat.InvitationDeclined
	InvitationCanceled = chat.InvitationCanceled

	MessageTypeText = chat.MessageTypeText

	AlertActive   = alerts.AlertActive
	AlertInactive = alerts.AlertInactive

	JobPostOpen   = jobs.JobPostOpen
	JobPostClosed = jobs.JobPostClosed
)

var Summarize = user.Summarize
var CanonicalPair = chat.CanonicalPair
