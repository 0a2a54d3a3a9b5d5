package constants

const (
	AppName = "sbrp"

	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "SBRP"
)

// NATS subjects. Each event subject is suffixed with the report id.
const (
	SubjectReportPrefix    = "sbrp.report"
	SubjectReportGenerated = SubjectReportPrefix + ".generated"
	SubjectReportReview    = SubjectReportPrefix + ".review"
	SubjectReportFinalized = SubjectReportPrefix + ".finalized"
	SubjectReportPublished = SubjectReportPrefix + ".published"
	SubjectReportDeleted   = SubjectReportPrefix + ".deleted"
)
