package flows

// UserRecord is the flow-local account model. Flows receive it from
// directory closures and never load it themselves.
type UserRecord struct {
	SubjectID    string
	Identifier   string
	Role         string
	PasswordHash string
	Status       uint8
}
