package models

// ListingStatus 挂单生命周期状态
type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusReserved  ListingStatus = "reserved"
	StatusSold      ListingStatus = "sold"
)

// Listing 一条游戏账号出售记录 (应用内 camelCase 实体)
type Listing struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"ownerId"`
	Title       string        `json:"title"`
	Level       int           `json:"level"`
	Likes       int           `json:"likes"`
	Region      string        `json:"region"`
	LoginMethod string        `json:"loginMethod"`
	Price       float64       `json:"price"`
	Status      ListingStatus `json:"status"`
	AccountAge  string        `json:"accountAge"`
	PrimeLevel  string        `json:"primeLevel"`
	VaultCount  int           `json:"vaultCount"`

	// 有序集合，插入顺序即展示顺序
	Bundles     []string `json:"bundles"`
	EvoGuns     []string `json:"evoGuns"`
	ElitePasses []string `json:"elitePasses"`
	RarityTags  []string `json:"rarityTags"`

	GunVaultCount   int `json:"gunVaultCount"`
	DressVaultCount int `json:"dressVaultCount"`
	GlooWallCount   int `json:"glooWallCount"`
	EmotesCount     int `json:"emotesCount"`
	AnimationCount  int `json:"animationCount"`

	Highlights []string `json:"highlights"`

	ContactUsername string   `json:"contactUsername"`
	ProofLink       string   `json:"proofLink"`
	PaymentMethods  []string `json:"paymentMethods"`

	// 第一张图是封面
	Images []string `json:"images"`

	Featured  bool   `json:"featured"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ListingRecord listings 表的行结构 (snake_case 列名)
type ListingRecord struct {
	ID              string   `json:"id,omitempty"`
	OwnerID         string   `json:"owner_id"`
	Title           string   `json:"title"`
	Level           int      `json:"level"`
	Likes           int      `json:"likes"`
	Region          string   `json:"region"`
	LoginMethod     string   `json:"login_method"`
	Price           float64  `json:"price"`
	Status          string   `json:"status"`
	AccountAge      string   `json:"account_age"`
	PrimeLevel      string   `json:"prime_level"`
	VaultCount      int      `json:"vault_count"`
	Bundles         []string `json:"bundles"`
	EvoGuns         []string `json:"evo_guns"`
	ElitePasses     []string `json:"elite_passes"`
	RarityTags      []string `json:"rarity_tags"`
	GunVaultCount   int      `json:"gun_vault_count"`
	DressVaultCount int      `json:"dress_vault_count"`
	GlooWallCount   int      `json:"gloo_wall_count"`
	EmotesCount     int      `json:"emotes_count"`
	AnimationCount  int      `json:"animation_count"`
	Highlights      []string `json:"highlights"`
	ContactUsername string   `json:"contact_username"`
	ProofLink       string   `json:"proof_link"`
	PaymentMethods  []string `json:"payment_methods"`
	Images          []string `json:"images"`
	Featured        bool     `json:"featured"`
	CreatedAt       string   `json:"created_at,omitempty"`
	UpdatedAt       string   `json:"updated_at,omitempty"`
}

// Entity 把远端行映射为应用实体。集合列在远端可能为 null，统一补成空切片
func (r ListingRecord) Entity() Listing {
	return Listing{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		Title:           r.Title,
		Level:           r.Level,
		Likes:           r.Likes,
		Region:          r.Region,
		LoginMethod:     r.LoginMethod,
		Price:           r.Price,
		Status:          ListingStatus(r.Status),
		AccountAge:      r.AccountAge,
		PrimeLevel:      r.PrimeLevel,
		VaultCount:      r.VaultCount,
		Bundles:         orEmpty(r.Bundles),
		EvoGuns:         orEmpty(r.EvoGuns),
		ElitePasses:     orEmpty(r.ElitePasses),
		RarityTags:      orEmpty(r.RarityTags),
		GunVaultCount:   r.GunVaultCount,
		DressVaultCount: r.DressVaultCount,
		GlooWallCount:   r.GlooWallCount,
		EmotesCount:     r.EmotesCount,
		AnimationCount:  r.AnimationCount,
		Highlights:      orEmpty(r.Highlights),
		ContactUsername: r.ContactUsername,
		ProofLink:       r.ProofLink,
		PaymentMethods:  orEmpty(r.PaymentMethods),
		Images:          orEmpty(r.Images),
		Featured:        r.Featured,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// Record 反向映射，用于写回远端
func (l Listing) Record() ListingRecord {
	return ListingRecord{
		ID:              l.ID,
		OwnerID:         l.OwnerID,
		Title:           l.Title,
		Level:           l.Level,
		Likes:           l.Likes,
		Region:          l.Region,
		LoginMethod:     l.LoginMethod,
		Price:           l.Price,
		Status:          string(l.Status),
		AccountAge:      l.AccountAge,
		PrimeLevel:      l.PrimeLevel,
		VaultCount:      l.VaultCount,
		Bundles:         l.Bundles,
		EvoGuns:         l.EvoGuns,
		ElitePasses:     l.ElitePasses,
		RarityTags:      l.RarityTags,
		GunVaultCount:   l.GunVaultCount,
		DressVaultCount: l.DressVaultCount,
		GlooWallCount:   l.GlooWallCount,
		EmotesCount:     l.EmotesCount,
		AnimationCount:  l.AnimationCount,
		Highlights:      l.Highlights,
		ContactUsername: l.ContactUsername,
		ProofLink:       l.ProofLink,
		PaymentMethods:  l.PaymentMethods,
		Images:          l.Images,
		Featured:        l.Featured,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
