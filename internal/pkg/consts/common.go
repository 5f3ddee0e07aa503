package consts

const (
	RoleAdmin   = "ADMIN"
	RoleCreator = "CREATOR"
)

// 互动类型
const (
	EngagementLike    = "like"
	EngagementComment = "comment"
	EngagementShare   = "share"
)

const (
	UnknownValue = "unknown"
)

// 受众画像分桶
var (
	AgeRanges = []string{"13-17", "18-24", "25-34", "35-44", "45-54", "55+"}
	Genders   = []string{"male", "female", "other"}
)

// gin.Context 中的身份键
const (
	CtxUserID = "user_id"
	CtxRoles  = "roles"
)
