package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KnowledgeBase holds the hand-curated mapping tables the auto-classifier
// matches against: object labels to parent tags, category keyword lists,
// scene vocabulary and color words. The built-in tables cover the system
// taxonomy; deployments can override them wholesale with a YAML file.
type KnowledgeBase struct {
	// CategoryKeywords lists trigger words per category key.
	CategoryKeywords map[string][]string `yaml:"category_keywords"`
	// CategoryParents names the parent tag each category key resolves to.
	CategoryParents map[string]string `yaml:"category_parents"`
	// ObjectParents maps a recognized object keyword to candidate parent tags.
	ObjectParents map[string][]string `yaml:"object_parents"`
	// ObjectSynonyms folds label variants (plurals, translations) onto the
	// canonical object keyword.
	ObjectSynonyms map[string]string `yaml:"object_synonyms"`
	SceneRules     []SceneRule       `yaml:"scene_rules"`
	ColorWords     []string          `yaml:"color_words"`
	ColorParent    string            `yaml:"color_parent"`
}

type SceneRule struct {
	Keywords []string `yaml:"keywords"`
	Parent   string   `yaml:"parent"`
}

// LoadKnowledgeBase reads a full replacement table set from a YAML file.
func LoadKnowledgeBase(path string) (*KnowledgeBase, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	kb := &KnowledgeBase{}
	if err := yaml.Unmarshal(raw, kb); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	if kb.ColorParent == "" {
		kb.ColorParent = "Color"
	}
	return kb, nil
}

// DefaultKnowledgeBase returns the built-in tables, tuned to the system
// root taxonomy seeded at install time.
func DefaultKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		CategoryKeywords: map[string][]string{
			"animals":    {"animal", "mammal", "bird", "fish", "reptile", "amphibian", "insect", "arthropod", "动物", "昆虫", "鸟类"},
			"plants":     {"plant", "flower", "tree", "herb", "fern", "algae", "fungus", "植物", "花卉", "树木"},
			"biological": {"organism", "microbe", "bacteria", "virus", "cell", "organ", "tissue", "生物", "微生物", "细菌"},
			"vehicles":   {"vehicle", "car", "bicycle", "motorcycle", "aircraft", "ship", "train", "车辆", "汽车", "飞机"},
			"buildings":  {"building", "house", "bridge", "tower", "monument", "church", "temple", "建筑", "房屋", "桥梁"},
			"tools":      {"tool", "equipment", "machine", "instrument", "apparatus", "device", "工具", "设备", "机器"},
			"furniture":  {"furniture", "chair", "table", "bed", "cabinet", "sofa", "家具", "椅子", "桌子"},
			"food":       {"food", "beverage", "vegetable", "fruit", "meat", "seafood", "食物", "食品", "饮料"},
			"clothing":   {"clothing", "garment", "shoe", "hat", "accessory", "jewelry", "服装", "衣服", "鞋子"},
			"technology": {"electronics", "computer", "phone", "television", "speaker", "camera", "电子产品", "计算机", "手机"},
			"weather":    {"weather", "cloud", "rain", "snow", "lightning", "wind", "frost", "天气", "云", "雨"},
			"landscapes": {"landscape", "mountain", "ocean", "lake", "river", "desert", "forest", "景观", "山脉", "海洋"},
			"celestial":  {"celestial", "sun", "moon", "star", "planet", "galaxy", "天体", "太阳", "月亮"},
			"emotions":   {"emotion", "mood", "joy", "sadness", "anger", "fear", "love", "情感", "情绪", "快乐"},
			"concepts":   {"concept", "idea", "philosophy", "religion", "culture", "概念", "思想", "哲学"},
			"activities": {"activity", "sport", "game", "work", "study", "leisure", "活动", "运动", "游戏"},
			"art":        {"art", "painting", "sculpture", "music", "dance", "literature", "film", "艺术", "绘画", "音乐"},
			"materials":  {"material", "metal", "wood", "stone", "plastic", "glass", "paper", "fabric", "材料", "金属", "木材"},
			"chemicals":  {"chemical", "drug", "compound", "element", "化学物质", "化学品", "药物"},
		},
		CategoryParents: map[string]string{
			"animals":    "Animals",
			"plants":     "Plants",
			"biological": "Microorganisms",
			"vehicles":   "Vehicles",
			"buildings":  "Buildings",
			"tools":      "Tools",
			"furniture":  "Furniture",
			"food":       "Food",
			"clothing":   "Clothing",
			"technology": "Computers",
			"weather":    "Weather Phenomena",
			"landscapes": "Geographical Features",
			"celestial":  "Celestial Bodies",
			"emotions":   "Emotions",
			"concepts":   "Concepts",
			"activities": "Activities",
			"art":        "Arts",
			"materials":  "Materials",
			"chemicals":  "Chemical Phenomena",
		},
		ObjectParents: map[string][]string{
			"cat": {"Mammals", "Animals"}, "dog": {"Mammals", "Animals"},
			"bird": {"Birds", "Animals"}, "fish": {"Fish", "Animals"},
			"horse": {"Mammals", "Animals"}, "insect": {"Insects", "Animals"},
			"flower": {"Flowering Plants", "Plants"}, "tree": {"Trees", "Plants"},
			"grass": {"Herbs", "Plants"}, "leaf": {"Plants"},
			"car": {"Vehicles"}, "bicycle": {"Vehicles"}, "airplane": {"Vehicles"},
			"boat": {"Vehicles"}, "train": {"Vehicles"},
			"house": {"Buildings"}, "building": {"Buildings"}, "bridge": {"Bridges", "Buildings"},
			"tool": {"Tools"}, "machine": {"Machines"},
			"food": {"Food"}, "drink": {"Food"},
			"clothes": {"Clothing"}, "shoe": {"Clothing"},
			"computer": {"Computers"}, "phone": {"Computers"},
			"sky": {"Weather Phenomena"}, "cloud": {"Weather Phenomena"},
			"rain": {"Weather Phenomena"}, "snow": {"Weather Phenomena"},
			"mountain": {"Mountains", "Geographical Features"}, "sea": {"Oceans", "Geographical Features"},
			"lake": {"Lakes", "Geographical Features"}, "river": {"Rivers", "Geographical Features"},
			"sun": {"Stars", "Celestial Bodies"}, "moon": {"Moons", "Celestial Bodies"},
			"star": {"Stars", "Celestial Bodies"},
		},
		ObjectSynonyms: map[string]string{
			"kitten": "cat", "猫": "cat",
			"puppy": "dog", "狗": "dog",
			"鸟": "bird", "鱼": "fish", "马": "horse", "昆虫": "insect",
			"花": "flower", "树": "tree", "草": "grass", "叶子": "leaf",
			"automobile": "car", "truck": "car", "bus": "car", "汽车": "car", "车": "car",
			"自行车": "bicycle", "motorcycle": "bicycle", "摩托车": "bicycle",
			"plane": "airplane", "飞机": "airplane", "ship": "boat", "船": "boat", "火车": "train",
			"房子": "house", "建筑": "building", "桥": "bridge",
			"工具": "tool", "设备": "machine", "机器": "machine",
			"食物": "food", "食品": "food", "饮料": "drink",
			"衣服": "clothes", "服装": "clothes", "鞋": "shoe",
			"laptop": "computer", "电脑": "computer", "手机": "phone",
			"天空": "sky", "云": "cloud", "雨": "rain", "雪": "snow",
			"山": "mountain", "ocean": "sea", "海": "sea", "湖": "lake", "河": "river",
			"太阳": "sun", "月亮": "moon", "星星": "star",
		},
		SceneRules: []SceneRule{
			{Keywords: []string{"outdoor", "nature", "scenery", "户外", "自然", "风景"}, Parent: "Natural Phenomena"},
			{Keywords: []string{"indoor", "room", "室内", "房间"}, Parent: "Buildings"},
			{Keywords: []string{"city", "street", "urban", "城市", "街道"}, Parent: "Structures"},
			{Keywords: []string{"ocean", "beach", "sea", "海洋", "海滩"}, Parent: "Oceans"},
			{Keywords: []string{"mountain", "forest", "山", "森林"}, Parent: "Mountains"},
		},
		ColorWords: []string{
			"red", "blue", "green", "yellow", "purple", "orange", "pink",
			"brown", "black", "white", "gray", "grey",
			"红色", "蓝色", "绿色", "黄色", "紫色", "橙色", "粉色", "棕色", "黑色", "白色", "灰色",
		},
		ColorParent: "Color",
	}
}

// CanonicalObject folds a recognized label onto the canonical object
// keyword, or returns the lowercased label unchanged.
func (kb *KnowledgeBase) CanonicalObject(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if canon, ok := kb.ObjectSynonyms[label]; ok {
		return canon
	}
	return label
}

// ParentsForObject returns the candidate parent tag names for one
// recognized object label, empty when the label is unknown.
func (kb *KnowledgeBase) ParentsForObject(label string) []string {
	return kb.ObjectParents[kb.CanonicalObject(label)]
}

// CategoryParentsIn scans text for category trigger words and returns the
// parent tag name of every category that fires, in no particular order.
func (kb *KnowledgeBase) CategoryParentsIn(text string) []string {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var parents []string
	seen := map[string]bool{}
	for category, keywords := range kb.CategoryKeywords {
		parent, ok := kb.CategoryParents[category]
		if !ok || seen[parent] {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				parents = append(parents, parent)
				seen[parent] = true
				break
			}
		}
	}
	return parents
}

// SceneParents returns parent tag names matching a scene description.
func (kb *KnowledgeBase) SceneParents(scene string) []string {
	scene = strings.ToLower(strings.TrimSpace(scene))
	if scene == "" {
		return nil
	}
	var parents []string
	for _, rule := range kb.SceneRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(scene, kw) {
				parents = append(parents, rule.Parent)
				break
			}
		}
	}
	return parents
}

// MentionsColor reports whether the text contains any known color word.
func (kb *KnowledgeBase) MentionsColor(text string) bool {
	text = strings.ToLower(text)
	for _, c := range kb.ColorWords {
		if strings.Contains(text, c) {
			return true
		}
	}
	return false
}
