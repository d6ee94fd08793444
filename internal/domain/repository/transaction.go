package repository

import "context"

// TransactionManager defines the interface for managing database transactions.
// This allows the use case layer to handle transactions without depending on a
// specific DB driver like GORM.
type TransactionManager interface {
	// Execute runs a function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// Otherwise it's committed. All repository operations within the function
	// use the same database transaction.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides repository instances bound to a specific
// transaction, so that multi-step operations stay atomic.
type RepositoryFactory interface {
	// ProfileRepo returns a ProfileRepository bound to the current transaction.
	ProfileRepo() ProfileRepository

	// CommentRepo returns a CommentRepository bound to the current transaction.
	CommentRepo() CommentRepository

	// PostRepo returns a PostRepository bound to the current transaction.
	PostRepo() PostRepository

	// WeeklyLogRepo returns a WeeklyLogRepository bound to the current transaction.
	WeeklyLogRepo() WeeklyLogRepository

	// ChallengeRepo returns a ChallengeRepository bound to the current transaction.
	ChallengeRepo() ChallengeRepository

	// NotificationRepo returns a NotificationRepository bound to the current transaction.
	NotificationRepo() NotificationRepository
}
