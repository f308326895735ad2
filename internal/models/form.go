package models

// ListingForm 发布挂单表单，不含服务端分配的 id/owner_id/featured/时间戳
type ListingForm struct {
	Title           string   `json:"title"`
	Level           int      `json:"level"`
	Likes           int      `json:"likes"`
	Region          string   `json:"region"`
	LoginMethod     string   `json:"loginMethod"`
	Price           float64  `json:"price"`
	Status          string   `json:"status"`
	AccountAge      string   `json:"accountAge"`
	PrimeLevel      string   `json:"primeLevel"`
	VaultCount      int      `json:"vaultCount"`
	Bundles         []string `json:"bundles"`
	EvoGuns         []string `json:"evoGuns"`
	ElitePasses     []string `json:"elitePasses"`
	RarityTags      []string `json:"rarityTags"`
	GunVaultCount   int      `json:"gunVaultCount"`
	DressVaultCount int      `json:"dressVaultCount"`
	GlooWallCount   int      `json:"glooWallCount"`
	EmotesCount     int      `json:"emotesCount"`
	AnimationCount  int      `json:"animationCount"`
	Highlights      []string `json:"highlights"`
	ContactUsername string   `json:"contactUsername"`
	ProofLink       string   `json:"proofLink"`
	PaymentMethods  []string `json:"paymentMethods"`
	Images          []string `json:"images"`
}

// Record 构造插入 listings 表的行。featured 在创建时强制为 false
func (f ListingForm) Record(ownerID string) ListingRecord {
	return ListingRecord{
		OwnerID:         ownerID,
		Title:           f.Title,
		Level:           f.Level,
		Likes:           f.Likes,
		Region:          f.Region,
		LoginMethod:     f.LoginMethod,
		Price:           f.Price,
		Status:          f.Status,
		AccountAge:      f.AccountAge,
		PrimeLevel:      f.PrimeLevel,
		VaultCount:      f.VaultCount,
		Bundles:         orEmpty(f.Bundles),
		EvoGuns:         orEmpty(f.EvoGuns),
		ElitePasses:     orEmpty(f.ElitePasses),
		RarityTags:      orEmpty(f.RarityTags),
		GunVaultCount:   f.GunVaultCount,
		DressVaultCount: f.DressVaultCount,
		GlooWallCount:   f.GlooWallCount,
		EmotesCount:     f.EmotesCount,
		AnimationCount:  f.AnimationCount,
		Highlights:      orEmpty(f.Highlights),
		ContactUsername: f.ContactUsername,
		ProofLink:       f.ProofLink,
		PaymentMethods:  orEmpty(f.PaymentMethods),
		Images:          orEmpty(f.Images),
		Featured:        false,
	}
}

// DefaultListingForm 发布页面的初始表单值
func DefaultListingForm() ListingForm {
	return ListingForm{
		Title:          "",
		Level:          1,
		Likes:          0,
		Region:         "NA",
		LoginMethod:    "Google",
		Price:          0,
		Status:         string(StatusAvailable),
		AccountAge:     "1 Year",
		PrimeLevel:     "None",
		Bundles:        []string{},
		EvoGuns:        []string{},
		ElitePasses:    []string{},
		RarityTags:     []string{},
		Highlights:     []string{},
		PaymentMethods: []string{"PayPal", "Crypto"},
		Images:         []string{},
	}
}

// ListingPatch 部分更新载荷，key 是实体字段名 (camelCase)，只包含要改的字段
type ListingPatch map[string]any
