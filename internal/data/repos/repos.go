package repos

import (
	"github.com/havenapp/haven-backend/internal/data/repos/alerts"
	"github.com/havenapp/haven-backend/internal/data/repos/auth"
	"github.com/havenapp/haven-backend/internal/data/repos/chat"
	"github.com/havenapp/haven-backend/internal/data/repos/jobs"
	"github.com/havenapp/haven-backend/internal/data/repos/library"
	"github.com/havenapp/haven-backend/internal/data/repos/user"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type ChatInvitationRepo = chat.ChatInvitationRepo
type ConversationRepo = chat.ConversationRepo
type ConversationDeletedByRepo = chat.ConversationDeletedByRepo
type MessageRepo = chat.MessageRepo

type ContactRepo = alerts.ContactRepo
type LocationAlertRepo = alerts.LocationAlertRepo
type LocationSnapshotRepo = alerts.LocationSnapshotRepo
type IncomingAlert = alerts.IncomingAlert

type JobPostRepo = jobs.JobPostRepo
type LibraryModuleRepo = library.LibraryModuleRepo

var NewUserRepo = user.NewUserRepo
var NewUserTokenRepo = auth.NewUserTokenRepo
var NewChatInvitationRepo = chat.NewChatInvitationRepo
var NewConversationRepo = chat.NewConversationRepo
var NewConversationDeletedByRepo = chat.NewConversationDeletedByRepo
var NewMessageRepo = chat.NewMessageRepo
var NewContactRepo = alerts.NewContactRepo
var NewLocationAlertRepo = alerts.NewLocationAlertRepo
var NewLocationSnapshotRepo = alerts.NewLocationSnapshotRepo
var NewJobPostRepo = jobs.NewJobPostRepo
var NewLibraryModuleRepo = library.NewLibraryModuleRepo
