package domain

// LinkedEntity is the domain record a user's role points to. Downstream
// dashboard queries are scoped by it.
type LinkedEntity interface {
	// Kind names the entity type, e.g. "student" or "department".
	Kind() string
	// EntityID is the identifier of the linked record.
	EntityID() string

	linkedEntity()
}

type StudentRef struct{ StudentID string }

type ProfessorRef struct{ ProfessorID string }

// DepartmentRef is linked to department heads.
type DepartmentRef struct{ DepartmentID string }

// ExamOfficeRef is linked to exam administrators.
type ExamOfficeRef struct{ StaffID string }

// DeanOfficeRef is linked to vice deans.
type DeanOfficeRef struct{ StaffID string }

func (r StudentRef) Kind() string { return "student" }
func (r StudentRef) EntityID() string { return r.StudentID }
func (StudentRef) linkedEntity() {}

func (r ProfessorRef) Kind() string { return "professor" }
func (r ProfessorRef) EntityID() string { return r.ProfessorID }
func (ProfessorRef) linkedEntity() {}

func (r DepartmentRef) Kind() string { return "department" }
func (r DepartmentRef) EntityID() string { return r.DepartmentID }
func (DepartmentRef) linkedEntity() {}

func (r ExamOfficeRef) Kind() string { return "exam_office" }
func (r ExamOfficeRef) EntityID() string { return r.StaffID }
func (ExamOfficeRef) linkedEntity() {}

func (r DeanOfficeRef) Kind() string { return "dean_office" }
func (r DeanOfficeRef) EntityID() string { return r.StaffID }
func (DeanOfficeRef) linkedEntity() {}

// NewLinkedEntity returns the entity reference variant matching role.
func NewLinkedEntity(role Role, id string) (LinkedEntity, error) {
	switch role {
	case RoleStudent:
		return StudentRef{StudentID: id}, nil
	case RoleProfessor:
		return ProfessorRef{ProfessorID: id}, nil
	case RoleDepartmentHead:
		return DepartmentRef{DepartmentID: id}, nil
	case RoleExamAdmin:
		return ExamOfficeRef{StaffID: id}, nil
	case RoleViceDean:
		return DeanOfficeRef{StaffID: id}, nil
	default:
		return nil, ErrUnknownRole
	}
}
