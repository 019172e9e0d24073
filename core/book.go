package core

// Book represents a title held by the library.
//
// Quantity records how many physical copies exist, but lending works on a
// single shared Available flag: the flag is true only while no copy is on
// loan. Multi-copy accounting is deliberately not modeled.
type Book struct {
	BookID    string `json:"book_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Genre     string `json:"genre"`
	Publisher string `json:"publisher"`
	Quantity  int    `json:"quantity"`
	Available bool   `json:"available"`
	Place     string `json:"place"`
}
