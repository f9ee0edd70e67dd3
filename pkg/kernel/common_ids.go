package kernel

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

type CompanyID string

func NewCompanyID(id string) CompanyID { return CompanyID(id) }
func (c CompanyID) String() string     { return string(c) }
func (c CompanyID) IsEmpty() bool      { return string(c) == "" }

type ApplicationID string

func NewApplicationID(id string) ApplicationID { return ApplicationID(id) }
func (a ApplicationID) String() string         { return string(a) }
func (a ApplicationID) IsEmpty() bool          { return string(a) == "" }
