package legacy

import "time"

// Read-only row types for the legacy MARC-tagged schema. Column names
// follow the legacy tables verbatim; the engine never writes these.

type Staff struct {
	Userid      int    `gorm:"column:userid;primaryKey"`
	Username    string `gorm:"column:username"`
	Pwd         string `gorm:"column:pwd"`
	FirstName   string `gorm:"column:first_name_nm"`
	LastName    string `gorm:"column:last_name_nm"`
	AdminFlag   string `gorm:"column:admin_flg"`
	CircFlag    string `gorm:"column:circ_flg"`
	CatalogFlag string `gorm:"column:catalog_flg"`
}

func (Staff) TableName() string { return "staff" }

type Member struct {
	Mbrid          int    `gorm:"column:mbrid;primaryKey"`
	Barcode        string `gorm:"column:barcode_nmbr"`
	FirstName      string `gorm:"column:first_name_nm"`
	LastName       string `gorm:"column:last_name_nm"`
	Address        string `gorm:"column:address"`
	HomePhone      string `gorm:"column:home_phone"`
	Email          string `gorm:"column:email"`
	Classification string `gorm:"column:classification"`
}

func (Member) TableName() string { return "member" }

type MemberClassification struct {
	Code        string `gorm:"column:code;primaryKey"`
	Description string `gorm:"column:description"`
}

func (MemberClassification) TableName() string { return "mbr_classify_dm" }

type CollectionCode struct {
	Code        string `gorm:"column:code;primaryKey"`
	Description string `gorm:"column:description"`
	DaysDueBack int    `gorm:"column:days_due_back"`
}

func (CollectionCode) TableName() string { return "collection_dm" }

type MaterialTypeCode struct {
	Code        string `gorm:"column:code;primaryKey"`
	Description string `gorm:"column:description"`
	ImageFile   string `gorm:"column:image_file"`
}

func (MaterialTypeCode) TableName() string { return "material_type_dm" }

type Biblio struct {
	Bibid        int        `gorm:"column:bibid;primaryKey"`
	Title        string     `gorm:"column:title"`
	Author       string     `gorm:"column:author"`
	CallNumber   string     `gorm:"column:call_nmbr1"`
	MaterialCode string     `gorm:"column:material_cd"`
	CollectionCd string     `gorm:"column:collection_cd"`
	LastChange   *time.Time `gorm:"column:last_change_dt"`
}

func (Biblio) TableName() string { return "biblio" }

// BiblioField is one tagged sub-field row: a (tag, sub-field code, value)
// triple belonging to one bibliographic record.
type BiblioField struct {
	Bibid      int    `gorm:"column:bibid;primaryKey;autoIncrement:false"`
	Fieldid    int    `gorm:"column:fieldid;primaryKey;autoIncrement:false"`
	Tag        string `gorm:"column:tag"`
	SubfieldCd string `gorm:"column:subfield_cd"`
	FieldData  string `gorm:"column:field_data"`
}

func (BiblioField) TableName() string { return "biblio_field" }

// BiblioCopy is the live copy-status snapshot.
type BiblioCopy struct {
	Bibid       int        `gorm:"column:bibid;primaryKey;autoIncrement:false"`
	Copyid      int        `gorm:"column:copyid;primaryKey;autoIncrement:false"`
	Barcode     string     `gorm:"column:barcode_nmbr"`
	StatusCd    string     `gorm:"column:status_cd"`
	StatusBegin *time.Time `gorm:"column:status_begin_dt"`
	DueBack     *time.Time `gorm:"column:due_back_dt"`
	Mbrid       *int       `gorm:"column:mbrid"`
}

func (BiblioCopy) TableName() string { return "biblio_copy" }

// StatusHistory is one loan-status history row.
type StatusHistory struct {
	Bibid       int        `gorm:"column:bibid"`
	Copyid      int        `gorm:"column:copyid"`
	StatusCd    string     `gorm:"column:status_cd"`
	StatusBegin *time.Time `gorm:"column:status_begin_dt"`
	DueBack     *time.Time `gorm:"column:due_back_dt"`
	Mbrid       *int       `gorm:"column:mbrid"`
}

func (StatusHistory) TableName() string { return "biblio_status_hist" }
