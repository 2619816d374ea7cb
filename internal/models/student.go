package models

// StudentRecord represents the DM_STUDENT table. Read-only to this
// subsystem; it supplies candidate auto-fill values for document fields.
type StudentRecord struct {
	ID             string `db:"ID" json:"id"`
	FirstName      string `db:"FIRST_NAME" json:"firstName"`
	LastName       string `db:"LAST_NAME" json:"lastName"`
	Email          string `db:"EMAIL" json:"email"`
	CNP            string `db:"CNP" json:"cnp"`
	Address        string `db:"ADDRESS" json:"address"`
	IDCardSeries   string `db:"ID_CARD_SERIES" json:"idCardSeries"`
	IDCardNumber   string `db:"ID_CARD_NUMBER" json:"idCardNumber"`
	IDCardIssuedBy string `db:"ID_CARD_ISSUED_BY" json:"idCardIssuedBy"`
}

// FullName joins the student's names, used as the auto-fill fallback when no
// application record is available
func (s *StudentRecord) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	default:
		return s.FirstName + " " + s.LastName
	}
}

// ApplicationRecord represents the DM_APPLICATION table: the student's
// enrollment application. Field names follow the original Romanian form
// labels because the template bindings refer to them.
type ApplicationRecord struct {
	ID           string `db:"ID" json:"id"`
	StudentID    string `db:"STUDENT_ID" json:"studentId"`
	Prenume      string `db:"PRENUME" json:"prenume"`
	Nume         string `db:"NUME" json:"nume"`
	Institutie   string `db:"INSTITUTIE" json:"institutie"`
	Facultate    string `db:"FACULTATE" json:"facultate"`
	Specializare string `db:"SPECIALIZARE" json:"specializare"`
	AnStudiu     string `db:"AN_STUDIU" json:"anStudiu"`
	Email        string `db:"EMAIL" json:"email"`
}
