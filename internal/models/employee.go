package models

// Subdivision подразделение
type Subdivision struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"not null" json:"name"`
}

func (Subdivision) TableName() string {
	return "subdivisions"
}

// JobPosition должность
type JobPosition struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"not null" json:"name"`
}

func (JobPosition) TableName() string {
	return "job_positions"
}

// Employee сотрудник. Дату увольнения заполняет внешняя система учета,
// календарь ее только читает.
type Employee struct {
	ID              uint         `gorm:"primarykey" json:"id"`
	Username        string       `gorm:"not null;index" json:"username"`
	MailNickname    string       `gorm:"uniqueIndex;not null" json:"mailNickname"`
	Email           string       `json:"email"`
	ChatID          int64        `gorm:"index" json:"-"` // чат Telegram для пушей, 0 - не привязан
	Location        string       `json:"location,omitempty"`
	TerminationDate *Day         `gorm:"type:varchar(10)" json:"terminationDate,omitempty"`
	SubdivisionID   *uint        `json:"-"`
	Subdivision     *Subdivision `gorm:"foreignKey:SubdivisionID" json:"subdivision,omitempty"`
	JobPositionID   *uint        `json:"-"`
	JobPosition     *JobPosition `gorm:"foreignKey:JobPositionID" json:"jobPosition,omitempty"`
}

func (Employee) TableName() string {
	return "employees"
}

// IsTerminated проверяет, уволен ли сотрудник (дата увольнения задана)
func (e *Employee) IsTerminated() bool {
	return e.TerminationDate != nil
}

// ActiveIn проверяет, был ли сотрудник в штате хотя бы в первый день месяца.
// Уволенный в первый день месяца еще попадает в этот месяц.
func (e *Employee) ActiveIn(m Month) bool {
	if e.TerminationDate == nil {
		return true
	}
	return !e.TerminationDate.Before(m.First())
}

// HasPushTarget проверяет, привязан ли чат для пушей
func (e *Employee) HasPushTarget() bool {
	return e.ChatID != 0
}

// Follow подписка одного сотрудника на изменения присутствия другого
type Follow struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Follower  string `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower"`
	Following string `gorm:"column:followee;not null;uniqueIndex:idx_follow_pair;index" json:"following"`
}

func (Follow) TableName() string {
	return "follows"
}
