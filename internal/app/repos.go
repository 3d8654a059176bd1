package app

import (
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/data/repos"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

type Repos struct {
	User      repos.UserRepo
	UserToken repos.UserTokenRepo

	ChatInvitation        repos.ChatInvitationRepo
	Conversation          repos.ConversationRepo
	ConversationDeletedBy repos.ConversationDeletedByRepo
	Message               repos.MessageRepo

	Contact          repos.ContactRepo
	LocationAlert    repos.LocationAlertRepo
	LocationSnapshot repos.LocationSnapshotRepo

	JobPost       repos.JobPostRepo
	LibraryModule repos.LibraryModuleRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),

		ChatInvitation:        repos.NewChatInvitationRepo(db, log),
		Conversation:          repos.NewConversationRepo(db, log),
		ConversationDeletedBy: repos.NewConversationDeletedByRepo(db, log),
		Message:               repos.NewMessageRepo(db, log),

		Contact:          repos.NewContactRepo(db, log),
		LocationAlert:    repos.NewLocationAlertRepo(db, log),
		LocationSnapshot: repos.NewLocationSnapshotRepo(db, log),

		JobPost:       repos.NewJobPostRepo(db, log),
		LibraryModule: repos.NewLibraryModuleRepo(db, log),
	}
}
