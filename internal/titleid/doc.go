// Package titleid parses and classifies the 16-character hexadecimal
// identifiers the console stores use for every downloadable item.
//
// An identifier is split into a 4-character platform prefix, a 4-character
// category, and an 8-character low half shared between a game and its update
// and DLC siblings. Only the platform/category pairs the catalog understands
// parse successfully; anything else is rejected with ErrInvalidIdentifier so
// callers can skip it without retrying.
//
// Classification maps each identifier onto the catalog Partition that stores
// it, and the sibling helpers derive the related game, update, or DLC
// identifier by swapping the category.
package titleid
