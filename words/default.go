package words

// DefaultTable returns the built-in Spanish category table.
func DefaultTable() Table {
	return Table{
		"animales":         {"GATO", "PERRO", "VACA", "CABALLO", "CERDO", "POLLO", "PATO", "RATON", "LEON", "TIGRE"},
		"cuerpo":           {"CABEZA", "MANO", "PIERNA", "OJOS", "BOCA", "NARIZ", "OREJA", "PIE", "BRAZO", "CORAZON"},
		"paises":           {"ESPANA", "FRANCIA", "ITALIA", "PORTUGAL", "ALEMANIA", "MARRUECOS", "CHINA", "JAPON", "BRASIL", "MEXICO"},
		"utensilios":       {"CUBIERTO", "VASO", "PLATO", "CUCHARA", "TENEDOR", "CUBO", "SILLA", "MESA", "LAMPARA", "RELOJ"},
		"colores":          {"ROJO", "AZUL", "VERDE", "AMARILLO", "NEGRO", "BLANCO", "MORADO", "NARANJA", "ROSADO", "GRIS"},
		"deportes":         {"FUTBOL", "BALONCESTO", "TENIS", "NATACION", "BOXEO", "RUGBY", "VOLEIBOL", "GOLF", "SKI", "SURF"},
		"personajes":       {"PAQUITO", "RAPHAEL", "LOPEZ", "SABINA", "ALMODOVAR", "PENELOPE", "BARDEM", "CRUZ", "BECKHAM", "PAULA"},
		"comidas":          {"PIZZA", "PAELLA", "TORTILLA", "GAZPACHO", "JAMON", "CHURROS", "CROQUETA", "EMPANADA", "FABADA", "CALDO"},
		"trabajos":         {"MEDICO", "PROFESOR", "POLICIA", "BOMBERO", "COCINERO", "CARPINTERO", "FONTANERO", "VENDEDOR", "PILOTO", "ABOGADO"},
		"ropa":             {"CAMISETA", "PANTALON", "ZAPATO", "SOMBRERO", "CHAQUETA", "BUFANDA", "GUANTE", "MEDIAS", "VESTIDO", "CORBATA"},
		"clima":            {"SOL", "LLUVIA", "NIEVE", "VIENTO", "NUBE", "TORMENTA", "ARCOIRIS", "GRANIZO", "CALOR", "FRIO"},
		"animales_magicos": {"DRAGON", "UNICORNIO", "FENIX", "GRIFO", "BASILISCO", "ESFINGE", "MINOTAURO", "HIDRA", "PEGASO", "CENTAURO"},
		"frutas":           {"MANZANA", "PLATANO", "NARANJA", "UVA", "FRESAS", "PERA", "KIWI", "MELON", "SANDIA", "CEREZA"},
		"marcas":           {"ZARA", "INDITEX", "MANGO", "REPSOL", "BBVA", "SANTANDER", "ELCORTEINGLES", "CARREFOUR", "MEDIAMARKT", "MAPFRE"},
	}
}
