package consts

const (
	AnalyticsDirtyKey = "analytics:dirty"
)
