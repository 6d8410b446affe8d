package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/data/repos/taxonomy"
	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

// seedNode is one node of the built-in system taxonomy.
type seedNode struct {
	name       string
	nameAlt    string
	desc       string
	category   string
	domain     string
	isAbstract bool
	children   []seedNode
}

// SeederService installs the system root taxonomy: the fixed upper
// ontology every deployment starts from. Seeding is idempotent; existing
// tags are kept and only missing ones are created.
type SeederService interface {
	Seed(ctx context.Context, actorID uuid.UUID) (int, error)
}

type seederService struct {
	db       *gorm.DB
	log      *logger.Logger
	tagRepo  taxonomy.TagRepo
	resolver PathResolver
	graph    TaxonomyGraph
}

func NewSeederService(db *gorm.DB, baseLog *logger.Logger, tagRepo taxonomy.TagRepo, resolver PathResolver, graph TaxonomyGraph) SeederService {
	return &seederService{
		db:       db,
		log:      baseLog.With("service", "SeederService"),
		tagRepo:  tagRepo,
		resolver: resolver,
		graph:    graph,
	}
}

func (s *seederService) Seed(ctx context.Context, actorID uuid.UUID) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, node := range systemTaxonomy() {
			n, err := s.seedNode(ctx, tx, actorID, node, nil)
			if err != nil {
				return err
			}
			created += n
		}
		return nil
	})
	if err != nil {
		return created, err
	}
	s.log.Info("system taxonomy seeded", "created", created)
	return created, nil
}

func (s *seederService) seedNode(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, node seedNode, parent *types.Tag) (int, error) {
	tag, err := s.tagRepo.GetActiveByName(ctx, tx, node.name)
	if err != nil {
		return 0, apperrors.InternalError("load seed tag", err)
	}

	created := 0
	if tag == nil {
		tag = &types.Tag{
			ID:           uuid.New(),
			Name:         node.name,
			NameAlt:      node.nameAlt,
			Description:  node.desc,
			Category:     node.category,
			Domain:       node.domain,
			IsAbstract:   node.isAbstract,
			IsSystem:     true,
			Status:       types.TagStatusActive,
			QualityScore: 10.0,
			CreatedBy:    actorID,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if parent != nil {
			tag.ParentID = &parent.ID
		}
		s.resolver.Recompute(tag, parent)
		if _, err := s.tagRepo.Create(ctx, tx, []*types.Tag{tag}); err != nil {
			return 0, apperrors.MapDBError("create seed tag", err)
		}
		if s.graph != nil {
			if gerr := s.graph.UpsertTag(ctx, tag); gerr != nil {
				s.log.Warn("graph seed upsert failed", "name", node.name, "error", gerr)
			}
		}
		created = 1
	}

	for _, child := range node.children {
		n, err := s.seedNode(ctx, tx, actorID, child, tag)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

// systemTaxonomy is the upper ontology of the encyclopedia, an
// everything-classification spanning life, matter, artifacts, mind,
// phenomena and properties.
func systemTaxonomy() []seedNode {
	return []seedNode{{
		name: "Universal Encyclopedia", nameAlt: "万物图鉴", desc: "Root of the encyclopedia of everything",
		category: "root", domain: "universal", isAbstract: true,
		children: []seedNode{
			{
				name: "Existence Realm", nameAlt: "存在界", desc: "Everything that physically exists",
				category: "philosophical", domain: "ontology", isAbstract: true,
				children: []seedNode{
					{
						name: "Life Domain", nameAlt: "生命域", desc: "Living organisms",
						category: "biological", domain: "biology", isAbstract: true,
						children: []seedNode{
							{
								name: "Animals", nameAlt: "动物", desc: "Multicellular organisms of the kingdom Animalia",
								category: "biological", domain: "zoology",
								children: []seedNode{
									{
										name: "Vertebrates", nameAlt: "脊椎动物", category: "biological", domain: "zoology",
										children: []seedNode{
											{name: "Mammals", nameAlt: "哺乳动物", category: "biological", domain: "zoology"},
											{name: "Birds", nameAlt: "鸟类", category: "biological", domain: "zoology"},
											{name: "Reptiles", nameAlt: "爬行动物", category: "biological", domain: "zoology"},
											{name: "Amphibians", nameAlt: "两栖动物", category: "biological", domain: "zoology"},
											{name: "Fish", nameAlt: "鱼类", category: "biological", domain: "zoology"},
										},
									},
									{
										name: "Invertebrates", nameAlt: "无脊椎动物", category: "biological", domain: "zoology",
										children: []seedNode{
											{name: "Insects", nameAlt: "昆虫", category: "biological", domain: "entomology"},
											{name: "Arachnids", nameAlt: "蛛形动物", category: "biological", domain: "zoology"},
											{name: "Crustaceans", nameAlt: "甲壳动物", category: "biological", domain: "zoology"},
											{name: "Mollusks", nameAlt: "软体动物", category: "biological", domain: "zoology"},
										},
									},
								},
							},
							{
								name: "Plants", nameAlt: "植物", desc: "Organisms of the kingdom Plantae",
								category: "biological", domain: "botany",
								children: []seedNode{
									{name: "Flowering Plants", nameAlt: "开花植物", category: "biological", domain: "botany"},
									{name: "Trees", nameAlt: "树木", category: "biological", domain: "botany"},
									{name: "Herbs", nameAlt: "草本植物", category: "biological", domain: "botany"},
									{name: "Ferns", nameAlt: "蕨类", category: "biological", domain: "botany"},
									{name: "Mosses", nameAlt: "苔藓", category: "biological", domain: "botany"},
								},
							},
							{
								name: "Microorganisms", nameAlt: "微生物", category: "biological", domain: "microbiology",
								children: []seedNode{
									{name: "Bacteria", nameAlt: "细菌", category: "biological", domain: "microbiology"},
									{name: "Viruses", nameAlt: "病毒", category: "biological", domain: "microbiology"},
									{name: "Fungi", nameAlt: "真菌", category: "biological", domain: "mycology"},
								},
							},
						},
					},
					{
						name: "Matter Domain", nameAlt: "物质域", desc: "Non-living matter",
						category: "physical", domain: "physics", isAbstract: true,
						children: []seedNode{
							{
								name: "Natural Matter", nameAlt: "自然物质", category: "physical", domain: "geology",
								children: []seedNode{
									{name: "Minerals", nameAlt: "矿物", category: "physical", domain: "geology"},
									{name: "Rocks", nameAlt: "岩石", category: "physical", domain: "geology"},
									{name: "Crystals", nameAlt: "晶体", category: "physical", domain: "chemistry"},
									{name: "Water", nameAlt: "水", category: "physical", domain: "chemistry"},
									{name: "Air", nameAlt: "空气", category: "physical", domain: "atmospheric_science"},
								},
							},
							{
								name: "Celestial Bodies", nameAlt: "天体", category: "physical", domain: "astronomy",
								children: []seedNode{
									{name: "Stars", nameAlt: "恒星", category: "physical", domain: "astronomy"},
									{name: "Planets", nameAlt: "行星", category: "physical", domain: "astronomy"},
									{name: "Moons", nameAlt: "卫星", category: "physical", domain: "astronomy"},
								},
							},
							{
								name: "Geographical Features", nameAlt: "地理特征", category: "physical", domain: "geography",
								children: []seedNode{
									{name: "Mountains", nameAlt: "山脉", category: "physical", domain: "geography"},
									{name: "Oceans", nameAlt: "海洋", category: "physical", domain: "oceanography"},
									{name: "Rivers", nameAlt: "河流", category: "physical", domain: "geography"},
									{name: "Lakes", nameAlt: "湖泊", category: "physical", domain: "geography"},
									{name: "Deserts", nameAlt: "沙漠", category: "physical", domain: "geography"},
									{name: "Forests", nameAlt: "森林", category: "physical", domain: "ecology"},
								},
							},
						},
					},
					{
						name: "Artifacts", nameAlt: "人造物", desc: "Objects made by humans",
						category: "artificial", domain: "engineering", isAbstract: true,
						children: []seedNode{
							{
								name: "Tools", nameAlt: "工具", category: "artificial", domain: "engineering",
								children: []seedNode{
									{name: "Hand Tools", nameAlt: "手动工具", category: "artificial", domain: "engineering"},
									{name: "Power Tools", nameAlt: "电动工具", category: "artificial", domain: "engineering"},
									{name: "Measuring Tools", nameAlt: "测量工具", category: "artificial", domain: "metrology"},
								},
							},
							{
								name: "Machines", nameAlt: "机器", category: "artificial", domain: "engineering",
								children: []seedNode{
									{name: "Vehicles", nameAlt: "交通工具", category: "artificial", domain: "transportation"},
									{name: "Computers", nameAlt: "计算机", category: "artificial", domain: "computing"},
									{name: "Appliances", nameAlt: "家用电器", category: "artificial", domain: "engineering"},
								},
							},
							{
								name: "Structures", nameAlt: "构筑物", category: "artificial", domain: "architecture",
								children: []seedNode{
									{name: "Buildings", nameAlt: "建筑", category: "artificial", domain: "architecture"},
									{name: "Bridges", nameAlt: "桥梁", category: "artificial", domain: "civil_engineering"},
									{name: "Monuments", nameAlt: "纪念碑", category: "artificial", domain: "architecture"},
								},
							},
							{
								name: "Materials", nameAlt: "材料", category: "artificial", domain: "materials_science",
								children: []seedNode{
									{name: "Metals", nameAlt: "金属", category: "artificial", domain: "materials_science"},
									{name: "Plastics", nameAlt: "塑料", category: "artificial", domain: "materials_science"},
									{name: "Ceramics", nameAlt: "陶瓷", category: "artificial", domain: "materials_science"},
									{name: "Textiles", nameAlt: "织物", category: "artificial", domain: "materials_science"},
								},
							},
							{name: "Furniture", nameAlt: "家具", category: "artificial", domain: "design"},
							{name: "Food", nameAlt: "食物", category: "artificial", domain: "culinary"},
							{name: "Clothing", nameAlt: "服装", category: "artificial", domain: "fashion"},
						},
					},
				},
			},
			{
				name: "Consciousness Realm", nameAlt: "意识界", desc: "Products of mind and culture",
				category: "abstract", domain: "philosophy", isAbstract: true,
				children: []seedNode{
					{
						name: "Emotions", nameAlt: "情感", category: "abstract", domain: "psychology", isAbstract: true,
						children: []seedNode{
							{name: "Positive Emotions", nameAlt: "积极情绪", category: "abstract", domain: "psychology", isAbstract: true},
							{name: "Negative Emotions", nameAlt: "消极情绪", category: "abstract", domain: "psychology", isAbstract: true},
						},
					},
					{
						name: "Concepts", nameAlt: "概念", category: "abstract", domain: "philosophy", isAbstract: true,
						children: []seedNode{
							{name: "Abstract Concepts", nameAlt: "抽象概念", category: "abstract", domain: "philosophy", isAbstract: true},
							{name: "Philosophical Concepts", nameAlt: "哲学概念", category: "abstract", domain: "philosophy", isAbstract: true},
						},
					},
					{
						name: "Activities", nameAlt: "活动", category: "abstract", domain: "sociology", isAbstract: true,
						children: []seedNode{
							{name: "Social Activities", nameAlt: "社会活动", category: "abstract", domain: "sociology"},
							{name: "Cultural Activities", nameAlt: "文化活动", category: "abstract", domain: "culture"},
							{name: "Sports", nameAlt: "体育运动", category: "abstract", domain: "athletics"},
						},
					},
					{
						name: "Arts", nameAlt: "艺术", category: "abstract", domain: "art",
						children: []seedNode{
							{name: "Visual Arts", nameAlt: "视觉艺术", category: "abstract", domain: "art"},
							{name: "Performing Arts", nameAlt: "表演艺术", category: "abstract", domain: "art"},
							{name: "Music", nameAlt: "音乐", category: "abstract", domain: "music"},
							{name: "Literature", nameAlt: "文学", category: "abstract", domain: "literature"},
						},
					},
				},
			},
			{
				name: "Phenomena Domain", nameAlt: "现象域", desc: "Observable processes and events",
				category: "phenomenal", domain: "science", isAbstract: true,
				children: []seedNode{
					{
						name: "Natural Phenomena", nameAlt: "自然现象", category: "phenomenal", domain: "earth_science",
						children: []seedNode{
							{name: "Weather Phenomena", nameAlt: "天气现象", category: "phenomenal", domain: "meteorology"},
							{name: "Geological Phenomena", nameAlt: "地质现象", category: "phenomenal", domain: "geology"},
							{name: "Astronomical Phenomena", nameAlt: "天文现象", category: "phenomenal", domain: "astronomy"},
						},
					},
					{
						name: "Physical Phenomena", nameAlt: "物理现象", category: "phenomenal", domain: "physics",
						children: []seedNode{
							{name: "Optical Phenomena", nameAlt: "光学现象", category: "phenomenal", domain: "optics"},
							{name: "Electromagnetic Phenomena", nameAlt: "电磁现象", category: "phenomenal", domain: "physics"},
							{name: "Thermal Phenomena", nameAlt: "热现象", category: "phenomenal", domain: "thermodynamics"},
						},
					},
					{name: "Chemical Phenomena", nameAlt: "化学现象", category: "phenomenal", domain: "chemistry"},
					{name: "Biological Phenomena", nameAlt: "生物现象", category: "phenomenal", domain: "biology"},
				},
			},
			{
				name: "Properties Domain", nameAlt: "属性域", desc: "Attributes things can have",
				category: "property", domain: "metaphysics", isAbstract: true,
				children: []seedNode{
					{
						name: "Physical Properties", nameAlt: "物理属性", category: "property", domain: "physics", isAbstract: true,
						children: []seedNode{
							{name: "Color", nameAlt: "颜色", category: "property", domain: "optics", isAbstract: true},
							{name: "Shape", nameAlt: "形状", category: "property", domain: "geometry", isAbstract: true},
							{name: "Size", nameAlt: "尺寸", category: "property", domain: "metrology", isAbstract: true},
							{name: "Texture", nameAlt: "质地", category: "property", domain: "materials_science", isAbstract: true},
						},
					},
					{name: "Chemical Properties", nameAlt: "化学属性", category: "property", domain: "chemistry", isAbstract: true},
					{name: "Biological Properties", nameAlt: "生物属性", category: "property", domain: "biology", isAbstract: true},
				},
			},
		},
	}}
}
