package entity

type EvidenceKind string

const (
	EvidenceAudio EvidenceKind = "audio"
	EvidenceImage EvidenceKind = "image"
)

// EvidenceArtifact is an uploaded recording or screenshot. It only lives for
// the registration request that carried it.
type EvidenceArtifact struct {
	Kind        EvidenceKind
	FileName    string
	ContentType string
	Data        []byte
}
