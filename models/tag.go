package models

type Tag struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
}

type ImageTag struct {
	ImageID uint  `gorm:"primaryKey" json:"image_id"`
	TagID   uint  `gorm:"primaryKey" json:"tag_id"`
	Image   Image `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE" json:"-"`
	Tag     Tag   `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ImageTag) TableName() string {
	return "image_tags"
}
