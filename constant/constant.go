package constant

type RecordingStatus string

const (
	RecordingStatusActive    RecordingStatus = "ACTIVE"
	RecordingStatusCompleted RecordingStatus = "COMPLETED"
	RecordingStatusFailed    RecordingStatus = "FAILED"
	RecordingStatusDeleted   RecordingStatus = "DELETED"
)

func (s RecordingStatus) String() string {
	return string(s)
}

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}

const (
	DefaultFormat   = "webm"
	DefaultMimeType = "audio/webm"

	// BcryptCost is higher than the library default so leaked hashes stay
	// expensive to brute force offline.
	BcryptCost = 12
)
