package config

import (
	"fmt"
	"strings"
)

// Category is one entry of the report taxonomy. Subcategories are ordered;
// option 0 always maps to Other. A category with no subcategories skips the
// subcategory question entirely.
type Category struct {
	Key           string
	Name          string
	Subcategories []string
	Other         string
}

// Categories is the fixed taxonomy, in menu order. Key "0" (free-form
// problem) comes last in the menu.
var Categories = []Category{
	{
		Key:  "1",
		Name: "Calles y Carreteras 🚗",
		Subcategories: []string{
			"Hoyo en la calle",
			"Pavimento dañado",
			"Obstáculo en la vía",
			"Topes y reductores",
			"Zona de accidentes",
			"Señal rota o ausente",
		},
		Other: "Otro problema",
	},
	{
		Key:  "2",
		Name: "Banquetas y Parques 🚶🏽",
		Subcategories: []string{
			"Banqueta dañada",
			"Árbol o rama caída",
			"Raíz o rama invadiendo",
			"Mobiliario urbano roto",
			"Area verde descuidada",
			"Estructura en mal estado",
		},
		Other: "Otro problema",
	},
	{
		Key:  "3",
		Name: "Basura y Residuos ♻️",
		Subcategories: []string{
			"Basura acumulada",
			"Escombro suelto",
			"Tiradero ilegal",
			"Contenedor roto",
			"Animal muerto",
			"Residuo peligroso",
		},
		Other: "Otro problema",
	},
	{
		Key:  "4",
		Name: "Agua y Drenaje 💧",
		Subcategories: []string{
			"Fuga de agua",
			"Alcantarilla tapada",
			"Encharcamiento/inundación",
			"Olor fuerte a drenaje",
			"Drenaje desbordado",
			"Pozo o registro abierto",
		},
		Other: "Otro problema",
	},
	{
		Key:  "5",
		Name: "Luces y Electricidad 💡",
		Subcategories: []string{
			"Luminaria fallando",
			"Poste dañado",
			"Cables colgando",
			"Transformadores",
			"Zona muy oscura",
			"Riesgo eléctrico",
		},
		Other: "Otro problema",
	},
	{
		Key:  "6",
		Name: "Animales y Fauna 🐾",
		Subcategories: []string{
			"Fauna salvaje peligrosa",
			"Panal de abejas/avispas",
			"Nidos en estructuras",
			"Animal herido/agresivo",
			"Animal doméstico suelto",
			"Plagas en vía pública",
		},
		Other: "Otro problema",
	},
	{
		Key:  "7",
		Name: "Construcción y Obras 🚧",
		Subcategories: []string{
			"Zanja abierta",
			"Obra sin señalización",
			"Material de obra en calle",
			"Obra abandonada",
			"Valla/protección dañada",
			"Excavación peligrosa",
		},
		Other: "Otro problema",
	},
	{
		Key:           "0",
		Name:          "Otro tipo de problema",
		Subcategories: nil,
		Other:         "Otro tipo de problema",
	},
}

// CategoryByKey returns the category for a numeric menu key.
func CategoryByKey(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryByName looks a category up by its display name, which is what the
// session draft stores.
func CategoryByName(name string) (Category, bool) {
	for _, c := range Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryMenu renders the numbered category menu, "0" last.
func CategoryMenu() string {
	var lines []string
	for _, c := range Categories {
		if c.Key == "0" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s. %s", c.Key, c.Name))
	}
	for _, c := range Categories {
		if c.Key == "0" {
			lines = append(lines, fmt.Sprintf("0. %s", c.Name))
		}
	}
	return strings.Join(lines, "\n")
}

// SubcategoryMenu renders a category's numbered subcategory menu with the
// Other fallback as option 0.
func (c Category) SubcategoryMenu() string {
	lines := make([]string, 0, len(c.Subcategories)+1)
	for i, s := range c.Subcategories {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, s))
	}
	lines = append(lines, fmt.Sprintf("0. %s", c.Other))
	return strings.Join(lines, "\n")
}

// Subcategory resolves a numeric choice against the category: 0 is the Other
// fallback, 1..N pick from the ordered list.
func (c Category) Subcategory(choice int) (string, bool) {
	if choice == 0 {
		return c.Other, true
	}
	if choice >= 1 && choice <= len(c.Subcategories) {
		return c.Subcategories[choice-1], true
	}
	return "", false
}
